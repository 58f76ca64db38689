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

type GroupRepository struct {
	collection *mongodb.Collection
	client     *mongodb.Client
}

// NewGroupRepository creates a new group repository
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		collection: mongo.GetCollection("groups"),
		client:     mongo.Client,
	}
}

// CreateFanOut inserts one group copy per member inside a single
// transaction. Either every copy is written or none are.
func (r *GroupRepository) CreateFanOut(ctx context.Context, copies []*models.Group) error {
	if len(copies) == 0 {
		return fmt.Errorf("no group copies to write")
	}

	docs := make([]any, 0, len(copies))
	for _, copy := range copies {
		if copy.ID.IsZero() {
			copy.ID = bson.NewObjectID()
		}
		docs = append(docs, copy)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return r.collection.InsertMany(txCtx, docs)
	})
	if err != nil {
		return fmt.Errorf("failed to write group copies: %w", err)
	}

	return nil
}

// FindCopy retrieves a member's copy of a group
func (r *GroupRepository) FindCopy(ctx context.Context, groupID, ownerUID string) (*models.Group, error) {
	var group models.Group
	err := r.collection.FindOne(ctx, bson.M{"groupId": groupID, "ownerUid": ownerUID}).Decode(&group)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByOwner lists a member's group copies, newest first
func (r *GroupRepository) FindByOwner(ctx context.Context, ownerUID string) ([]*models.Group, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"ownerUid": ownerUID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []*models.Group
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}

	return groups, nil
}

// UpdateGroupImage writes the shared photo's storage location and the
// poster's post marker onto every copy of the group, in one
// transaction so readers of different copies never diverge. Only the
// bucket and object path are persisted; presigned URLs are minted at
// read time.
func (r *GroupRepository) UpdateGroupImage(ctx context.Context, groupID, posterUID, bucket, imagePath string) error {
	filter := bson.M{"groupId": groupID}
	update := bson.M{
		"$set": bson.M{
			"groupImageBucket": bucket,
			"groupImagePath":   imagePath,
			"memberPosts." + posterUID: time.Now().Unix(),
		},
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return r.collection.UpdateMany(txCtx, filter, update)
	})
	if err != nil {
		return fmt.Errorf("failed to update group copies: %w", err)
	}

	if updateResult, ok := result.(*mongodb.UpdateResult); ok && updateResult.MatchedCount == 0 {
		return mongodb.ErrNoDocuments
	}

	return nil
}

func (r *GroupRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongodb.IndexModel{
		{
			Keys:    bson.D{{Key: "groupId", Value: 1}, {Key: "ownerUid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "ownerUid", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create group indexes: %w", err)
	}

	return nil
}
