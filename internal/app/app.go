// Package app opens the storage backends selected by the configuration.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyeditor/internal/cache"
	"surveyeditor/internal/config"
	"surveyeditor/internal/repository"
)

const pingTimeout = 5 * time.Second

// App holds the repositories and caches shared by the services
type App struct {
	SurveyRepo       repository.SurveyRepo
	ResponseRepo     repository.ResponseRepo
	OperationLogRepo repository.OperationLogRepo
	Drafts           cache.DraftCache
	Results          cache.ResultsCache

	closers []func(context.Context) error
}

// Open connects to MongoDB and Redis, or builds in-memory stores when
// cfg.Storage is memory
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.Storage == config.StorageMemory {
		log.Println("Using in-memory storage; data is lost on restart")
		return &App{
			SurveyRepo:       repository.NewMemorySurveyRepo(),
			ResponseRepo:     repository.NewMemoryResponseRepo(),
			OperationLogRepo: repository.NewMemoryOperationLogRepo(),
			Drafts:           cache.NewMemoryDraftCache(),
			Results:          cache.NewMemoryResultsCache(),
		}, nil
	}

	a := &App{}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, mongoClient.Disconnect)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	log.Println("Connected to Redis")

	db := mongoClient.Database(cfg.MongoDatabase)
	a.SurveyRepo = repository.NewSurveyRepo(db)
	a.ResponseRepo = repository.NewResponseRepo(db)
	a.OperationLogRepo = repository.NewOperationLogRepo(db)
	a.Drafts = cache.NewDraftCache(rdb, cfg.DraftTTL)
	a.Results = cache.NewResultsCache(rdb, cfg.ResultsTTL)
	return a, nil
}

// Close releases the connections in reverse order of opening
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}
	a.closers = nil
}
