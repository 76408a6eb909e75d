package repository

import (
	"context"
	"fmt"

	"payment-epayco/dto/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const callbackLogCollection = "epayco_callbacks"

type CallbackLogRepository interface {
	Insert(ctx context.Context, entry model.CallbackLog) error
	FindByReference(ctx context.Context, reference string) ([]model.CallbackLog, error)
}

type mongoCallbackLogRepo struct {
	collection *mongo.Collection
}

func NewMongoCallbackLogRepo(db *mongo.Database) CallbackLogRepository {
	return &mongoCallbackLogRepo{collection: db.Collection(callbackLogCollection)}
}

func (r *mongoCallbackLogRepo) Insert(ctx context.Context, entry model.CallbackLog) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert callback log: %w", err)
	}
	return nil
}

func (r *mongoCallbackLogRepo) FindByReference(ctx context.Context, reference string) ([]model.CallbackLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "received_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"reference": reference}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query callback logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []model.CallbackLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode callback logs: %w", err)
	}
	return logs, nil
}

// nopCallbackLogRepo is used when no MongoDB is configured.
type nopCallbackLogRepo struct{}

func NewNopCallbackLogRepo() CallbackLogRepository {
	return nopCallbackLogRepo{}
}

func (nopCallbackLogRepo) Insert(context.Context, model.CallbackLog) error { return nil }

func (nopCallbackLogRepo) FindByReference(context.Context, string) ([]model.CallbackLog, error) {
	return []model.CallbackLog{}, nil
}
