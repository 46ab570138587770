package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyeditor/internal/model"
	"surveyeditor/internal/survey"
)

func submitAll(t *testing.T, f *fixture, id string, reqs ...SubmitRequest) {
	t.Helper()
	for _, req := range reqs {
		_, err := f.responses.Submit(context.Background(), id, nil, req)
		require.NoError(t, err)
	}
}

func TestResultsService_Results(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, true)

	submitAll(t, f, id,
		SubmitRequest{Answers: map[string][]string{"0": {"Yes"}, "2": {"Fish", "Meat"}}},
		SubmitRequest{Answers: map[string][]string{"0": {"No"}, "1": {"Too far"}, "2": {"Fish"}}},
		SubmitRequest{Answers: map[string][]string{"0": {"No"}, "1": {"Busy"}}},
	)

	results, err := f.stats.Results(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 3, results.ResponseCount)
	require.Len(t, results.Questions, 3)

	assert.Equal(t, map[string]int{"Yes": 1, "No": 2}, results.Questions[0].Counts)
	assert.Equal(t, 3, results.Questions[0].Total)
	assert.ElementsMatch(t, []string{"Too far", "Busy"}, results.Questions[1].Texts)
	assert.Nil(t, results.Questions[1].Counts)
	assert.Equal(t, map[string]int{"Fish": 2, "Meat": 1}, results.Questions[2].Counts)
	assert.Equal(t, 3, results.Questions[2].Total)

	cached, err := f.results.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cached)

	// A new response invalidates the cached aggregate.
	submitAll(t, f, id, SubmitRequest{Answers: map[string][]string{"0": {"Yes"}}})
	results, err = f.stats.Results(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 4, results.ResponseCount)

	_, err = f.stats.Results(ctx, bob, id)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResultsService_ResultsFollowSavedQuestions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, true)
	submitAll(t, f, id, SubmitRequest{Answers: map[string][]string{"0": {"Yes"}}})

	before, err := f.stats.Results(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, before.Questions, 3)

	doc, err := survey.Parse([]byte(`[{"prompt": "Any comments?", "kind": "text"}]`))
	require.NoError(t, err)
	_, err = f.surveys.Save(ctx, alice, id, "", doc)
	require.NoError(t, err)

	after, err := f.stats.Results(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, after.Questions, 1)
	assert.Equal(t, "Any comments?", after.Questions[0].Prompt)
	assert.Equal(t, string(survey.KindText), after.Questions[0].Kind)

	// The editor commit path clears cached results as well.
	_, err = f.editor.Open(ctx, alice, id)
	require.NoError(t, err)
	_, err = f.editor.Apply(ctx, alice, id, Mutation{Op: OpAppend, Kind: survey.KindText})
	require.NoError(t, err)
	_, err = f.editor.Commit(ctx, alice, id, "")
	require.NoError(t, err)

	after, err = f.stats.Results(ctx, alice, id)
	require.NoError(t, err)
	assert.Len(t, after.Questions, 2)
}

func TestResultsService_DeleteDropsCachedResults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, partyQuestions, true)

	_, err := f.stats.Results(ctx, alice, id)
	require.NoError(t, err)
	require.NoError(t, f.surveys.Delete(ctx, alice, id))

	cached, err := f.results.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestWriteCSV(t *testing.T) {
	sv := &model.Survey{Questions: partyQuestions}
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	responses := []*model.Response{
		{UserName: "bob", SubmittedAt: at, Answers: map[string][]string{"0": {"No"}, "1": {"Busy, sorry"}, "2": {"Fish", "Meat"}}},
		{UserName: "Guest", SubmittedAt: at.Add(time.Hour), Answers: map[string][]string{}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sv.Document(), responses))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Submitted at", "Respondent", "Q1: Will you attend?", "Q2: Why not?", "Q3: Food"},
		{"2025-03-01 09:30:00", "bob", "No", "Busy, sorry", "Fish, Meat"},
		{"2025-03-01 10:30:00", "Guest", "", "", ""},
	}, rows)
}

func TestResultsService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.storeSurvey(t, alice, `["Name?"]`, true)
	submitAll(t, f, id, SubmitRequest{Answers: map[string][]string{"0": {"Ann"}}})

	var buf bytes.Buffer
	require.NoError(t, f.stats.ExportCSV(ctx, alice, id, &buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Q1: Name?", rows[0][2])
	assert.Equal(t, "Ann", rows[1][2])

	assert.ErrorIs(t, f.stats.ExportCSV(ctx, bob, id, &buf), ErrForbidden)
}
