package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyeditor/internal/metrics"
	"surveyeditor/internal/survey"
)

func TestEditorService_OpenSeedsEmptySurvey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, "[]", false)

	doc, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, []survey.Question{survey.NewQuestion(survey.KindText)}, doc.Questions())

	stored, err := f.drafts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestEditorService_OpenFallsBackOnBrokenJSON(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, `{"broken`, false)

	doc, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ParseFallbacks))
}

func TestEditorService_OpenLegacySurvey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, `["Will you attend?", "What is your name?"]`, false)

	doc, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())
	q, _ := doc.Question(1)
	assert.Equal(t, "What is your name?", q.Prompt)
	assert.Equal(t, survey.KindText, q.Kind)
}

func TestEditorService_Apply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, "[]", false)
	_, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)

	raw := func(v interface{}) json.RawMessage {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return data
	}

	steps := []Mutation{
		{Op: OpUpdate, Index: 0, Field: survey.FieldPrompt, Value: raw("Will you attend?")},
		{Op: OpUpdate, Index: 0, Field: survey.FieldKind, Value: raw("single_choice")},
		{Op: OpUpdate, Index: 0, Field: survey.FieldOptions, Value: raw("Yes、No")},
		{Op: OpAppend, Kind: survey.KindText},
		{Op: OpBeginRule, Index: 1, TriggerIndex: 0},
		{Op: OpSetRule, Index: 1, TriggerIndex: 0, TriggerValue: "No"},
		{Op: OpAppend, Kind: survey.KindMultiChoice},
		{Op: OpUpdate, Index: 2, Field: survey.FieldOptions, Value: raw([]string{"Fish", " ", "Meat"})},
		{Op: OpUpdate, Index: 2, Field: survey.FieldAllowOther, Value: raw(true)},
	}
	var doc *survey.Document
	for _, m := range steps {
		doc, err = f.editor.Apply(ctx, alice, id, m)
		require.NoError(t, err, "op %s", m.Op)
	}

	qs := doc.Questions()
	require.Len(t, qs, 3)
	assert.Equal(t, []string{"Yes", "No"}, qs[0].Options)
	assert.Equal(t, &survey.BranchRule{TriggerIndex: 0, TriggerValue: "No"}, qs[1].BranchRule)
	assert.Equal(t, []string{"Fish", "Meat"}, qs[2].Options)
	assert.True(t, qs[2].AllowOther)

	stored, err := f.drafts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.Mutations.WithLabelValues("append", metrics.ResultOK)))

	// Retyping the trigger drops the dependent rule.
	doc, err = f.editor.Apply(ctx, alice, id, Mutation{Op: OpUpdate, Index: 0, Field: survey.FieldKind, Value: raw("text")})
	require.NoError(t, err)
	q1, _ := doc.Question(1)
	assert.Nil(t, q1.BranchRule)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RulesDropped))
}

func TestEditorService_ApplyRejectedKeepsDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, false)
	before, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)

	tests := []struct {
		name  string
		m     Mutation
		errIs error
	}{
		{name: "value not an option", m: Mutation{Op: OpSetRule, Index: 1, TriggerIndex: 0, TriggerValue: "Maybe"}, errIs: survey.ErrValidation},
		{name: "text trigger", m: Mutation{Op: OpSetRule, Index: 2, TriggerIndex: 1, TriggerValue: "x"}, errIs: survey.ErrValidation},
		{name: "remove out of range", m: Mutation{Op: OpRemove, Index: 9}, errIs: survey.ErrIndex},
		{name: "unknown op", m: Mutation{Op: "rename"}, errIs: survey.ErrValidation},
		{name: "missing value", m: Mutation{Op: OpUpdate, Index: 0, Field: survey.FieldPrompt}, errIs: survey.ErrValidation},
		{name: "unknown kind", m: Mutation{Op: OpUpdate, Index: 0, Field: survey.FieldKind, Value: json.RawMessage(`"radio"`)}, errIs: survey.ErrValidation},
		{name: "bad json value", m: Mutation{Op: OpUpdate, Index: 0, Field: survey.FieldPrompt, Value: json.RawMessage(`{`)}, errIs: survey.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.editor.Apply(ctx, alice, id, tt.m)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			stored, err := f.drafts.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, before, stored)
		})
	}
}

func TestEditorService_SetRuleOnLaterQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, false)
	_, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)

	doc, err := f.editor.Apply(ctx, alice, id, Mutation{Op: OpSetRule, Index: 2, TriggerIndex: 0, TriggerValue: "Yes"})
	require.NoError(t, err)
	q2, _ := doc.Question(2)
	assert.Equal(t, survey.RuleComplete, q2.RuleState())
}

func TestEditorService_TriggersPreviewCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, false)

	triggers, err := f.editor.Triggers(ctx, alice, id, 2)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, 0, triggers[0].Index)
	assert.Equal(t, []string{"Yes", "No"}, triggers[0].Options)

	_, err = f.editor.Triggers(ctx, alice, id, 9)
	assert.ErrorIs(t, err, survey.ErrIndex)

	visible, err := f.editor.Preview(ctx, alice, id, survey.Answers{0: "Yes"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, visible)

	_, err = f.editor.Apply(ctx, alice, id, Mutation{Op: OpRemove, Index: 0})
	require.NoError(t, err)
	sv, err := f.editor.Commit(ctx, alice, id, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", sv.Title)
	kept, err := f.drafts.Get(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, kept, "commit keeps the editing session open")

	stored, err := f.surveys.Get(ctx, id)
	require.NoError(t, err)
	doc := stored.Document()
	require.Equal(t, 2, doc.Len())
	q0, _ := doc.Question(0)
	assert.Nil(t, q0.BranchRule, "rule on the removed trigger is gone after commit")

	require.NoError(t, f.editor.Discard(ctx, alice, id))
	draft, err := f.drafts.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestEditorService_RulesDroppedByRemoval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, `[
		{"prompt": "Attend?", "kind": "single_choice", "options": ["Yes", "No"]},
		{"prompt": "Why not?", "kind": "text", "branchRule": {"triggerIndex": 0, "triggerValue": "No"}},
		{"prompt": "Food?", "kind": "text", "branchRule": {"triggerIndex": 0, "triggerValue": "Yes"}}
	]`, false)

	// Removing a question takes its own rule with it; that is not a cascade.
	_, err := f.editor.Apply(ctx, alice, id, Mutation{Op: OpRemove, Index: 1})
	require.NoError(t, err)
	assert.Zero(t, testutil.ToFloat64(f.metrics.RulesDropped))

	// Removing the trigger drops the rule of the question that depended on it.
	doc, err := f.editor.Apply(ctx, alice, id, Mutation{Op: OpRemove, Index: 0})
	require.NoError(t, err)
	q0, _ := doc.Question(0)
	assert.Nil(t, q0.BranchRule)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RulesDropped))

	_, err = f.editor.Apply(ctx, alice, id, Mutation{Op: OpClearRule, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RulesDropped))
}

func TestEditorService_OpenCountsRepairedRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, `[
		{"prompt": "Name?", "kind": "text"},
		{"prompt": "Why?", "kind": "text", "branchRule": {"triggerIndex": 0, "triggerValue": "x"}}
	]`, false)

	doc, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)
	q1, _ := doc.Question(1)
	assert.Nil(t, q1.BranchRule)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RulesDropped))
	assert.Zero(t, testutil.ToFloat64(f.metrics.ParseFallbacks))
}

func TestEditorService_DraftFollowsDirectSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, false)

	_, err := f.editor.Open(ctx, alice, id)
	require.NoError(t, err)

	saved, err := survey.Parse([]byte(`[{"prompt": "Saved directly"}]`))
	require.NoError(t, err)
	_, err = f.surveys.Save(ctx, alice, id, "", saved)
	require.NoError(t, err)

	draft, err := f.editor.Draft(ctx, alice, id)
	require.NoError(t, err)
	require.Equal(t, 1, draft.Len())
	q0, _ := draft.Question(0)
	assert.Equal(t, "Saved directly", q0.Prompt)

	// Committing the reopened draft keeps the saved questions.
	sv, err := f.editor.Commit(ctx, alice, id, "")
	require.NoError(t, err)
	assert.Equal(t, 1, sv.Document().Len())
}

func TestEditorService_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, false)

	_, err := f.editor.Open(ctx, bob, id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.editor.Apply(ctx, bob, id, Mutation{Op: OpAppend})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.editor.Discard(ctx, bob, id), ErrForbidden)
	_, err = f.editor.Preview(ctx, bob, id, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}
