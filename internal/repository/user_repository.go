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

type UserRepository struct {
	collection *mongodb.Collection
}

// NewUserRepository creates a new user profile repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		collection: mongo.GetCollection("users"),
	}
}

// Create saves a new user profile
func (r *UserRepository) Create(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if profile.ID.IsZero() {
		profile.ID = bson.NewObjectID()
	}

	now := time.Now().Unix()
	if profile.CreatedAt == 0 {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user profile: %w", err)
	}
	return profile, nil
}

// FindByUID retrieves a profile by the provider-assigned identity
func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"uid": uid}).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUIDs retrieves profiles for a set of identities
func (r *UserRepository) FindByUIDs(ctx context.Context, uids []string) ([]*models.UserProfile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"uid": bson.M{"$in": uids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find user profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*models.UserProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode user profiles: %w", err)
	}

	return profiles, nil
}

// UpdateUsername sets the username for a user
func (r *UserRepository) UpdateUsername(ctx context.Context, uid, username string) (*models.UserProfile, error) {
	filter := bson.M{"uid": uid}
	update := bson.M{
		"$set": bson.M{
			"username":  username,
			"updatedAt": time.Now().Unix(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.UserProfile
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update username: %w", err)
	}

	return &updated, nil
}

// UpdateProfileImage sets the profile photo's object path for a user.
// Presigned URLs are never written to the document.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, uid, imagePath string) error {
	filter := bson.M{"uid": uid}
	update := bson.M{
		"$set": bson.M{
			"profileImagePath": imagePath,
			"updatedAt":        time.Now().Unix(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update profile image: %w", err)
	}

	if result.MatchedCount == 0 {
		return mongodb.ErrNoDocuments
	}

	return nil
}

func (r *UserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongodb.IndexModel{
		{
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}
