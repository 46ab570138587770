package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveyeditor/internal/survey"
)

// DraftCache holds the document an author is editing, one per survey
type DraftCache interface {
	Get(ctx context.Context, surveyID string) (*survey.Document, error)
	Set(ctx context.Context, surveyID string, doc *survey.Document) error
	Delete(ctx context.Context, surveyID string) error
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a Redis-backed draft cache; drafts expire after ttl of inactivity
func NewDraftCache(client *redis.Client, ttl time.Duration) DraftCache {
	return &draftCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *draftCache) key(surveyID string) string {
	return fmt.Sprintf("survey:%s:draft", surveyID)
}

func (c *draftCache) Get(ctx context.Context, surveyID string) (*survey.Document, error) {
	data, err := c.client.Get(ctx, c.key(surveyID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return survey.Parse(data)
}

func (c *draftCache) Set(ctx context.Context, surveyID string, doc *survey.Document) error {
	data, err := survey.Serialize(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(surveyID), data, c.ttl).Err()
}

func (c *draftCache) Delete(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, c.key(surveyID)).Err()
}
