package survey

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
)

// record is the interchange shape of a question. Older editors wrote the
// prompt as "question" or "text" and the kind as "type".
type record struct {
	Prompt     *string     `json:"prompt"`
	Question   *string     `json:"question"`
	Text       *string     `json:"text"`
	Kind       Kind        `json:"kind"`
	Type       string      `json:"type"`
	Options    []string    `json:"options"`
	AllowOther bool        `json:"allowOther"`
	BranchRule *BranchRule `json:"branchRule"`
}

var legacyKinds = map[string]Kind{
	"radio":    KindSingleChoice,
	"select":   KindSingleChoice,
	"checkbox": KindMultiChoice,
}

// Parse reads a document from its interchange form: either a list of
// question records or the legacy list of prompt strings.
// Rules that reference missing or unsuitable triggers are dropped.
func Parse(raw []byte) (*Document, error) {
	doc, _, err := ParseWithRepairs(raw)
	return doc, err
}

// ParseWithRepairs is Parse that also reports how many stored branch rules
// were dropped because their trigger was missing or unsuitable.
func ParseWithRepairs(raw []byte) (*Document, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, &FormatError{Err: err}
	}

	doc := NewDocument()
	if len(items) == 0 {
		return doc, 0, nil
	}

	if isJSONString(items[0]) {
		for _, item := range items {
			var prompt string
			if err := json.Unmarshal(item, &prompt); err != nil {
				return nil, 0, &FormatError{Err: errors.New("legacy question list mixes strings and records")}
			}
			q := NewQuestion(KindText)
			q.Prompt = prompt
			doc.questions = append(doc.questions, q)
		}
		return doc, 0, nil
	}

	for _, item := range items {
		if !isJSONObject(item) {
			return nil, 0, &FormatError{Err: errors.New("question record must be an object")}
		}
		var rec record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, 0, &FormatError{Err: err}
		}
		doc.questions = append(doc.questions, rec.question())
	}
	dropped := repairRules(doc.questions)
	return doc, dropped, nil
}

// ParseOrEmpty parses raw and falls back to an empty document when it is
// malformed, so an editing session can always start.
func ParseOrEmpty(raw []byte) *Document {
	doc, err := Parse(raw)
	if err != nil {
		log.Printf("survey: discarding unreadable questions: %v", err)
		return NewDocument()
	}
	return doc
}

// Serialize writes the document in its interchange form
func Serialize(d *Document) ([]byte, error) {
	questions := d.questions
	if questions == nil {
		questions = []Question{}
	}
	return json.Marshal(questions)
}

// MarshalJSON implements json.Marshaler
func (d *Document) MarshalJSON() ([]byte, error) {
	return Serialize(d)
}

// UnmarshalJSON implements json.Unmarshaler with the same rules as Parse
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	d.questions = parsed.questions
	return nil
}

func (r record) question() Question {
	q := NewQuestion(r.kind())
	switch {
	case r.Prompt != nil:
		q.Prompt = *r.Prompt
	case r.Question != nil:
		q.Prompt = *r.Question
	case r.Text != nil:
		q.Prompt = *r.Text
	}
	q.Options = cleanOptions(r.Options)
	q.AllowOther = r.AllowOther
	if r.BranchRule != nil {
		rule := *r.BranchRule
		q.BranchRule = &rule
	}
	return q
}

func (r record) kind() Kind {
	if r.Kind.Valid() {
		return r.Kind
	}
	if k, ok := legacyKinds[r.Type]; ok {
		return k
	}
	if k := Kind(r.Type); k.Valid() {
		return k
	}
	return KindText
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
