package repository

import (
	"context"
	"fmt"
	"time"
	"treehouse-service/internal/database/mongo"
	"treehouse-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodb "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PictureRepository struct {
	collection *mongodb.Collection
}

// NewPictureRepository creates a new picture history repository
func NewPictureRepository() *PictureRepository {
	return &PictureRepository{
		collection: mongo.GetCollection("pictures"),
	}
}

// Create appends a picture record to the user's history
func (r *PictureRepository) Create(ctx context.Context, picture *models.Picture) (*models.Picture, error) {
	if picture.ID.IsZero() {
		picture.ID = bson.NewObjectID()
	}
	if picture.Timestamp == 0 {
		picture.Timestamp = time.Now().Unix()
	}

	_, err := r.collection.InsertOne(ctx, picture)
	if err != nil {
		return nil, fmt.Errorf("failed to insert picture: %w", err)
	}

	return picture, nil
}

// FindByUID lists a user's picture history, newest first
func (r *PictureRepository) FindByUID(ctx context.Context, uid string) ([]*models.Picture, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pictures: %w", err)
	}
	defer cursor.Close(ctx)

	var pictures []*models.Picture
	if err = cursor.All(ctx, &pictures); err != nil {
		return nil, fmt.Errorf("failed to decode pictures: %w", err)
	}

	return pictures, nil
}

// FindLatest returns the most recent picture for a user
func (r *PictureRepository) FindLatest(ctx context.Context, uid string) (*models.Picture, error) {
	opts := options.FindOne().SetSort(bson.M{"timestamp": -1})

	var picture models.Picture
	err := r.collection.FindOne(ctx, bson.M{"uid": uid}, opts).Decode(&picture)
	if err != nil {
		return nil, err
	}

	return &picture, nil
}

func (r *PictureRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongodb.IndexModel{
		{
			Keys: bson.D{{Key: "uid", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create picture indexes: %w", err)
	}

	return nil
}
