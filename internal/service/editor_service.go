package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"surveyeditor/internal/cache"
	"surveyeditor/internal/metrics"
	"surveyeditor/internal/model"
	"surveyeditor/internal/survey"
)

// MutationOp names one editor action
type MutationOp string

const (
	OpAppend    MutationOp = "append"
	OpRemove    MutationOp = "remove"
	OpUpdate    MutationOp = "update"
	OpBeginRule MutationOp = "begin_rule"
	OpSetRule   MutationOp = "set_rule"
	OpClearRule MutationOp = "clear_rule"
)

// Mutation is one edit sent by the editor UI.
// Index addresses the edited question; the other fields depend on Op.
type Mutation struct {
	Op           MutationOp      `json:"op"`
	Index        int             `json:"index"`
	Kind         survey.Kind     `json:"kind,omitempty"`  // append
	Field        survey.Field    `json:"field,omitempty"` // update
	Value        json.RawMessage `json:"value,omitempty"` // update
	TriggerIndex int             `json:"triggerIndex"`    // begin_rule, set_rule
	TriggerValue string          `json:"triggerValue"`    // set_rule
}

// EditorService keeps one draft document per survey and applies edits to it
type EditorService struct {
	surveys *SurveyService
	drafts  cache.DraftCache
	metrics *metrics.Metrics
}

// NewEditorService creates a new editor service
func NewEditorService(surveys *SurveyService, drafts cache.DraftCache, m *metrics.Metrics) *EditorService {
	return &EditorService{
		surveys: surveys,
		drafts:  drafts,
		metrics: m,
	}
}

// Open starts an editing session from the stored survey, replacing any draft.
// Unreadable stored questions yield an empty survey. An empty survey gets one
// blank text question so the editor always has something to show.
func (s *EditorService) Open(ctx context.Context, owner model.User, surveyID string) (*survey.Document, error) {
	sv, err := s.surveys.GetOwned(ctx, owner, surveyID)
	if err != nil {
		return nil, err
	}

	doc, repaired, err := survey.ParseWithRepairs([]byte(sv.Questions))
	if err != nil {
		log.Printf("Survey %s: stored questions unreadable, starting empty: %v", surveyID, err)
		s.metrics.ParseFallbacks.Inc()
		doc = survey.NewDocument()
	}
	if repaired > 0 {
		log.Printf("Survey %s: dropped %d invalid branch rules from stored questions", surveyID, repaired)
		s.metrics.RulesDropped.Add(float64(repaired))
	}
	if doc.Len() == 0 {
		if err := doc.Append(survey.NewQuestion(survey.KindText)); err != nil {
			return nil, err
		}
	}

	if err := s.drafts.Set(ctx, surveyID, doc); err != nil {
		return nil, fmt.Errorf("store draft %s: %w", surveyID, err)
	}
	return doc, nil
}

// Draft returns the current draft, opening the survey when there is none
func (s *EditorService) Draft(ctx context.Context, owner model.User, surveyID string) (*survey.Document, error) {
	if _, err := s.surveys.GetOwned(ctx, owner, surveyID); err != nil {
		return nil, err
	}
	doc, err := s.drafts.Get(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", surveyID, err)
	}
	if doc == nil {
		return s.Open(ctx, owner, surveyID)
	}
	return doc, nil
}

// Apply runs one mutation against the draft. A rejected mutation leaves the
// stored draft as it was and returns the survey package error.
func (s *EditorService) Apply(ctx context.Context, owner model.User, surveyID string, m Mutation) (*survey.Document, error) {
	doc, err := s.Draft(ctx, owner, surveyID)
	if err != nil {
		return nil, err
	}

	rulesBefore := countRules(doc) - ownRule(doc, m)
	if err := applyMutation(doc, m); err != nil {
		s.metrics.Mutations.WithLabelValues(string(m.Op), metrics.ResultRejected).Inc()
		return nil, err
	}
	s.metrics.Mutations.WithLabelValues(string(m.Op), metrics.ResultOK).Inc()
	if dropped := rulesBefore - countRules(doc); dropped > 0 {
		s.metrics.RulesDropped.Add(float64(dropped))
	}

	if err := s.drafts.Set(ctx, surveyID, doc); err != nil {
		return nil, fmt.Errorf("store draft %s: %w", surveyID, err)
	}
	return doc, nil
}

// Triggers lists the questions the question at index may depend on
func (s *EditorService) Triggers(ctx context.Context, owner model.User, surveyID string, index int) ([]survey.Trigger, error) {
	doc, err := s.Draft(ctx, owner, surveyID)
	if err != nil {
		return nil, err
	}
	return doc.EligibleTriggers(index)
}

// Preview reports which draft questions are shown for the given answers
func (s *EditorService) Preview(ctx context.Context, owner model.User, surveyID string, answers survey.Answers) ([]bool, error) {
	doc, err := s.Draft(ctx, owner, surveyID)
	if err != nil {
		return nil, err
	}
	return doc.Visibility(answers), nil
}

// Commit saves the draft as the survey's questions; the draft stays open
func (s *EditorService) Commit(ctx context.Context, owner model.User, surveyID, title string) (*model.Survey, error) {
	doc, err := s.Draft(ctx, owner, surveyID)
	if err != nil {
		return nil, err
	}
	return s.surveys.persist(ctx, owner, surveyID, title, doc)
}

// Discard drops the draft without saving
func (s *EditorService) Discard(ctx context.Context, owner model.User, surveyID string) error {
	if _, err := s.surveys.GetOwned(ctx, owner, surveyID); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, surveyID)
}

func applyMutation(doc *survey.Document, m Mutation) error {
	switch m.Op {
	case OpAppend:
		kind := m.Kind
		if kind == "" {
			kind = survey.KindText
		}
		q := survey.NewQuestion(kind)
		if kind.IsChoice() {
			q.Options = []string{survey.DefaultOption}
		}
		return doc.Append(q)
	case OpRemove:
		return doc.RemoveAt(m.Index)
	case OpUpdate:
		value, err := decodeFieldValue(m.Field, m.Value)
		if err != nil {
			return err
		}
		return doc.UpdateField(m.Index, m.Field, value)
	case OpBeginRule:
		return doc.BeginBranchRule(m.Index, m.TriggerIndex)
	case OpSetRule:
		return doc.SetBranchRule(m.Index, m.TriggerIndex, m.TriggerValue)
	case OpClearRule:
		return doc.ClearBranchRule(m.Index)
	default:
		return &survey.ValidationError{Field: "op", Reason: fmt.Sprintf("unknown operation %q", m.Op)}
	}
}

// decodeFieldValue turns the JSON value of an update into what UpdateField accepts
func decodeFieldValue(field survey.Field, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 {
		return nil, &survey.ValidationError{Field: string(field), Reason: "missing value"}
	}
	if field == survey.FieldOptions {
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &survey.ValidationError{Field: string(field), Reason: "value is not valid JSON"}
	}
	return v, nil
}

// ownRule is 1 when m removes or clears the rule of the question it
// addresses, so that rule is not counted as dropped by revalidation
func ownRule(doc *survey.Document, m Mutation) int {
	if m.Op != OpRemove && m.Op != OpClearRule {
		return 0
	}
	q, err := doc.Question(m.Index)
	if err != nil || q.BranchRule == nil {
		return 0
	}
	return 1
}

func countRules(doc *survey.Document) int {
	n := 0
	for _, q := range doc.Questions() {
		if q.BranchRule != nil {
			n++
		}
	}
	return n
}
