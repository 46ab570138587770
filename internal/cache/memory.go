package cache

import (
	"context"
	"sync"

	"surveyeditor/internal/model"
	"surveyeditor/internal/survey"
)

// MemoryDraftCache is an in-process DraftCache for STORAGE=memory and tests.
// Entries never expire.
type MemoryDraftCache struct {
	mu     sync.Mutex
	drafts map[string][]byte
}

// NewMemoryDraftCache creates an empty in-process draft cache
func NewMemoryDraftCache() *MemoryDraftCache {
	return &MemoryDraftCache{drafts: make(map[string][]byte)}
}

func (c *MemoryDraftCache) Get(ctx context.Context, surveyID string) (*survey.Document, error) {
	c.mu.Lock()
	data, ok := c.drafts[surveyID]
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return survey.Parse(data)
}

func (c *MemoryDraftCache) Set(ctx context.Context, surveyID string, doc *survey.Document) error {
	data, err := survey.Serialize(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.drafts[surveyID] = data
	c.mu.Unlock()
	return nil
}

func (c *MemoryDraftCache) Delete(ctx context.Context, surveyID string) error {
	c.mu.Lock()
	delete(c.drafts, surveyID)
	c.mu.Unlock()
	return nil
}

// MemoryResultsCache is an in-process ResultsCache
type MemoryResultsCache struct {
	mu      sync.Mutex
	results map[string]model.SurveyResults
}

// NewMemoryResultsCache creates an empty in-process results cache
func NewMemoryResultsCache() *MemoryResultsCache {
	return &MemoryResultsCache{results: make(map[string]model.SurveyResults)}
}

func (c *MemoryResultsCache) Get(ctx context.Context, surveyID string) (*model.SurveyResults, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[surveyID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (c *MemoryResultsCache) Set(ctx context.Context, surveyID string, results *model.SurveyResults) error {
	c.mu.Lock()
	c.results[surveyID] = *results
	c.mu.Unlock()
	return nil
}

func (c *MemoryResultsCache) Invalidate(ctx context.Context, surveyID string) error {
	c.mu.Lock()
	delete(c.results, surveyID)
	c.mu.Unlock()
	return nil
}
