package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyeditor/internal/model"
)

// OperationLogRepo stores the author audit trail
type OperationLogRepo interface {
	Create(ctx context.Context, entry *model.OperationLog) error
	Recent(ctx context.Context, limit int64) ([]*model.OperationLog, error)
}

type operationLogRepo struct {
	collection *mongo.Collection
}

// NewOperationLogRepo creates a MongoDB operation log repository
func NewOperationLogRepo(db *mongo.Database) OperationLogRepo {
	return &operationLogRepo{
		collection: db.Collection("operation_logs"),
	}
}

func (r *operationLogRepo) Create(ctx context.Context, entry *model.OperationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *operationLogRepo) Recent(ctx context.Context, limit int64) ([]*model.OperationLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []*model.OperationLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
