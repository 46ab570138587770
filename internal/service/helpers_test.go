package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"surveyeditor/internal/cache"
	"surveyeditor/internal/metrics"
	"surveyeditor/internal/model"
	"surveyeditor/internal/repository"
)

var (
	alice = model.User{ID: "u-alice", Name: "alice"}
	bob   = model.User{ID: "u-bob", Name: "bob"}
)

type fixture struct {
	surveyRepo   *repository.MemorySurveyRepo
	responseRepo *repository.MemoryResponseRepo
	opLog        *repository.MemoryOperationLogRepo
	drafts       *cache.MemoryDraftCache
	results      *cache.MemoryResultsCache
	metrics      *metrics.Metrics
	broadcaster  *recordingBroadcaster

	surveys   *SurveyService
	editor    *EditorService
	responses *ResponseService
	stats     *ResultsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		surveyRepo:   repository.NewMemorySurveyRepo(),
		responseRepo: repository.NewMemoryResponseRepo(),
		opLog:        repository.NewMemoryOperationLogRepo(),
		drafts:       cache.NewMemoryDraftCache(),
		results:      cache.NewMemoryResultsCache(),
		metrics:      metrics.New(),
		broadcaster:  &recordingBroadcaster{},
	}
	f.surveys = NewSurveyService(f.surveyRepo, f.responseRepo, f.opLog, f.drafts, f.results)
	f.surveys.SetBroadcaster(f.broadcaster)
	f.editor = NewEditorService(f.surveys, f.drafts, f.metrics)
	f.responses = NewResponseService(f.surveys, f.responseRepo, f.results, f.metrics)
	f.responses.SetBroadcaster(f.broadcaster)
	f.stats = NewResultsService(f.surveys, f.responseRepo, f.results)
	return f
}

// storeSurvey inserts a survey with raw questions JSON directly
func (f *fixture) storeSurvey(t *testing.T, owner model.User, questions string, active bool) string {
	t.Helper()
	id, err := f.surveyRepo.Create(context.Background(), &model.Survey{
		OwnerID:   owner.ID,
		Title:     "Party",
		Questions: questions,
		IsActive:  active,
	})
	require.NoError(t, err)
	return id
}

type broadcast struct {
	SurveyID string
	Type     string
	Payload  interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	messages     []broadcast
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToSurvey(surveyID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, broadcast{SurveyID: surveyID, Type: msgType, Payload: payload})
}

func (b *recordingBroadcaster) DisconnectSurvey(surveyID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, surveyID)
}

type failingLogRepo struct{}

func (failingLogRepo) Create(ctx context.Context, entry *model.OperationLog) error {
	return errors.New("log store down")
}

func (failingLogRepo) Recent(ctx context.Context, limit int64) ([]*model.OperationLog, error) {
	return nil, errors.New("log store down")
}

// partyQuestions:
//
//	0 single_choice "Will you attend?" [Yes No] allowOther
//	1 text "Why not?" shown when 0 == No
//	2 multi_choice "Food" [Fish Meat] allowOther
const partyQuestions = `[
	{"prompt": "Will you attend?", "kind": "single_choice", "options": ["Yes", "No"], "allowOther": true},
	{"prompt": "Why not?", "kind": "text", "branchRule": {"triggerIndex": 0, "triggerValue": "No"}},
	{"prompt": "Food", "kind": "multi_choice", "options": ["Fish", "Meat"], "allowOther": true}
]`
