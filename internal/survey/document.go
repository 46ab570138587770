package survey

// Field names a question attribute editable through UpdateField
type Field string

const (
	FieldPrompt     Field = "prompt"
	FieldKind       Field = "kind"
	FieldOptions    Field = "options"
	FieldAllowOther Field = "allowOther"
)

// Trigger is a question that may drive another question's display logic
type Trigger struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Document is the ordered list of questions of one survey.
// Questions are addressed by position. Every mutator either applies fully
// and leaves the branch rules consistent, or returns an error and changes nothing.
type Document struct {
	questions []Question
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{questions: []Question{}}
}

// Len returns the number of questions
func (d *Document) Len() int {
	return len(d.questions)
}

// Questions returns a copy of the questions in document order
func (d *Document) Questions() []Question {
	out := make([]Question, len(d.questions))
	for i, q := range d.questions {
		out[i] = q.clone()
	}
	return out
}

// Question returns a copy of the question at index
func (d *Document) Question(index int) (Question, error) {
	if err := d.checkIndex(index); err != nil {
		return Question{}, err
	}
	return d.questions[index].clone(), nil
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	return &Document{questions: d.Questions()}
}

// Append adds q at the end of the document.
// A branch rule on q must already satisfy the trigger rules for its new position.
func (d *Document) Append(q Question) error {
	q = q.clone()
	if q.Kind == "" {
		q.Kind = KindText
	}
	if !q.Kind.Valid() {
		return invalid(string(FieldKind), "unknown kind %q", q.Kind)
	}
	q.Options = cleanOptions(q.Options)
	if q.BranchRule != nil {
		if err := d.checkRule(len(d.questions), *q.BranchRule); err != nil {
			return err
		}
	}
	d.questions = append(d.questions, q)
	return nil
}

// RemoveAt deletes the question at index and shifts or drops the branch
// rules that pointed at it or past it.
func (d *Document) RemoveAt(index int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.questions = append(d.questions[:index], d.questions[index+1:]...)
	revalidateAfterRemoval(d.questions, index)
	return nil
}

// UpdateField sets one attribute of the question at index.
//
// Accepted values: prompt takes a string, kind a Kind or string, options a
// []string or the free-text form read by ParseOptions, allowOther a bool.
// Editing kind or options re-checks every rule triggered by this question.
func (d *Document) UpdateField(index int, field Field, value interface{}) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	q := d.questions[index].clone()

	switch field {
	case FieldPrompt:
		s, ok := value.(string)
		if !ok {
			return invalid(string(field), "expected string, got %T", value)
		}
		q.Prompt = s
	case FieldKind:
		var k Kind
		switch v := value.(type) {
		case Kind:
			k = v
		case string:
			k = Kind(v)
		default:
			return invalid(string(field), "expected string, got %T", value)
		}
		if !k.Valid() {
			return invalid(string(field), "unknown kind %q", k)
		}
		q.setKind(k)
	case FieldOptions:
		switch v := value.(type) {
		case []string:
			q.Options = cleanOptions(v)
		case string:
			q.Options = ParseOptions(v)
		default:
			return invalid(string(field), "expected string list, got %T", value)
		}
	case FieldAllowOther:
		b, ok := value.(bool)
		if !ok {
			return invalid(string(field), "expected bool, got %T", value)
		}
		q.AllowOther = b
	default:
		return invalid(string(field), "unknown field")
	}

	d.questions[index] = q
	if field == FieldKind || field == FieldOptions {
		revalidateAfterEdit(d.questions, index)
	}
	return nil
}

// EligibleTriggers lists, in ascending order, the earlier single-choice
// questions that the question at forIndex may use as a trigger.
// forIndex may equal Len to ask about a question about to be appended.
func (d *Document) EligibleTriggers(forIndex int) ([]Trigger, error) {
	if forIndex < 0 || forIndex > len(d.questions) {
		return nil, &IndexError{Index: forIndex, Len: len(d.questions)}
	}
	triggers := []Trigger{}
	for i := 0; i < forIndex; i++ {
		q := d.questions[i]
		if q.Kind != KindSingleChoice {
			continue
		}
		triggers = append(triggers, Trigger{
			Index:   i,
			Prompt:  q.Prompt,
			Options: append([]string{}, q.Options...),
		})
	}
	return triggers, nil
}

// BeginBranchRule picks a trigger for the question at index without choosing
// the matching value yet. The rule stays a draft until SetBranchRule completes it.
func (d *Document) BeginBranchRule(index, triggerIndex int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	if err := d.checkTrigger(index, triggerIndex); err != nil {
		return err
	}
	d.questions[index].BranchRule = &BranchRule{TriggerIndex: triggerIndex}
	return nil
}

// SetBranchRule makes the question at index visible only when the answer to
// triggerIndex equals triggerValue.
func (d *Document) SetBranchRule(index, triggerIndex int, triggerValue string) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	rule := BranchRule{TriggerIndex: triggerIndex, TriggerValue: triggerValue}
	if triggerValue == "" {
		return invalid("triggerValue", "must not be empty")
	}
	if err := d.checkRule(index, rule); err != nil {
		return err
	}
	d.questions[index].BranchRule = &rule
	return nil
}

// ClearBranchRule removes any display logic from the question at index
func (d *Document) ClearBranchRule(index int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.questions[index].BranchRule = nil
	return nil
}

func (d *Document) checkIndex(index int) error {
	if index < 0 || index >= len(d.questions) {
		return &IndexError{Index: index, Len: len(d.questions)}
	}
	return nil
}

func (d *Document) checkTrigger(index, triggerIndex int) error {
	if triggerIndex < 0 || triggerIndex >= index {
		return invalid("triggerIndex", "question %d cannot be triggered by question %d", index, triggerIndex)
	}
	if k := d.questions[triggerIndex].Kind; k != KindSingleChoice {
		return invalid("triggerIndex", "question %d is %s, only %s questions can trigger", triggerIndex, k, KindSingleChoice)
	}
	return nil
}

// checkRule validates rule for a question placed at index; an empty value is a draft
func (d *Document) checkRule(index int, rule BranchRule) error {
	if err := d.checkTrigger(index, rule.TriggerIndex); err != nil {
		return err
	}
	if rule.TriggerValue != "" && !d.questions[rule.TriggerIndex].HasOption(rule.TriggerValue) {
		return invalid("triggerValue", "%q is not an option of question %d", rule.TriggerValue, rule.TriggerIndex)
	}
	return nil
}
