package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"surveyeditor/internal/model"
)

// MemorySurveyRepo is an in-process SurveyRepo for STORAGE=memory and tests
type MemorySurveyRepo struct {
	mu      sync.RWMutex
	surveys map[string]model.Survey
}

// NewMemorySurveyRepo creates an empty in-process survey repository
func NewMemorySurveyRepo() *MemorySurveyRepo {
	return &MemorySurveyRepo{surveys: make(map[string]model.Survey)}
}

func (r *MemorySurveyRepo) Create(ctx context.Context, survey *model.Survey) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	survey.ID = uuid.NewString()
	survey.CreatedAt = time.Now()
	survey.UpdatedAt = survey.CreatedAt
	r.surveys[survey.ID] = *survey
	return survey.ID, nil
}

func (r *MemorySurveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemorySurveyRepo) filter(keep func(model.Survey) bool) []*model.Survey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Survey{}
	for _, s := range r.surveys {
		if keep(s) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemorySurveyRepo) GetByOwnerID(ctx context.Context, ownerID string) ([]*model.Survey, error) {
	return r.filter(func(s model.Survey) bool { return s.OwnerID == ownerID }), nil
}

func (r *MemorySurveyRepo) ListActive(ctx context.Context) ([]*model.Survey, error) {
	return r.filter(func(s model.Survey) bool { return s.IsActive }), nil
}

func (r *MemorySurveyRepo) Update(ctx context.Context, survey *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surveys[survey.ID]
	if !ok {
		return nil
	}
	survey.UpdatedAt = time.Now()
	s.Title = survey.Title
	s.Questions = survey.Questions
	s.UpdatedAt = survey.UpdatedAt
	r.surveys[s.ID] = s
	return nil
}

func (r *MemorySurveyRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.surveys[id]; ok {
		s.IsActive = active
		s.UpdatedAt = time.Now()
		r.surveys[id] = s
	}
	return nil
}

func (r *MemorySurveyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.surveys, id)
	r.mu.Unlock()
	return nil
}

// MemoryResponseRepo is an in-process ResponseRepo
type MemoryResponseRepo struct {
	mu        sync.RWMutex
	responses []model.Response
}

// NewMemoryResponseRepo creates an empty in-process response repository
func NewMemoryResponseRepo() *MemoryResponseRepo {
	return &MemoryResponseRepo{}
}

func (r *MemoryResponseRepo) Create(ctx context.Context, response *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = time.Now()
	}
	response.ID = uuid.NewString()
	r.responses = append(r.responses, *response)
	return nil
}

// ListBySurveyID returns the responses newest first
func (r *MemoryResponseRepo) ListBySurveyID(ctx context.Context, surveyID string) ([]*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Response{}
	for i := len(r.responses) - 1; i >= 0; i-- {
		if resp := r.responses[i]; resp.SurveyID == surveyID {
			out = append(out, &resp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *MemoryResponseRepo) CountBySurveyID(ctx context.Context, surveyID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryResponseRepo) DeleteBySurveyID(ctx context.Context, surveyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.responses[:0]
	for _, resp := range r.responses {
		if resp.SurveyID != surveyID {
			kept = append(kept, resp)
		}
	}
	r.responses = kept
	return nil
}

// MemoryOperationLogRepo is an in-process OperationLogRepo
type MemoryOperationLogRepo struct {
	mu      sync.RWMutex
	entries []model.OperationLog
}

// NewMemoryOperationLogRepo creates an empty in-process operation log
func NewMemoryOperationLogRepo() *MemoryOperationLogRepo {
	return &MemoryOperationLogRepo{}
}

func (r *MemoryOperationLogRepo) Create(ctx context.Context, entry *model.OperationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.ID = uuid.NewString()
	r.entries = append(r.entries, *entry)
	return nil
}

// Recent returns up to limit entries, newest first
func (r *MemoryOperationLogRepo) Recent(ctx context.Context, limit int64) ([]*model.OperationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.OperationLog{}
	for i := len(r.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		e := r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}
