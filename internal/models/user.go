package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserProfile is the per-user document created on first sign-in.
// UID is the identity-provider-assigned identifier and never changes.
// Only the storage object path is persisted; ProfileImageURL is a
// presigned URL resolved at read time and never written to MongoDB.
type UserProfile struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UID              string        `bson:"uid" json:"uid"`
	Email            string        `bson:"email,omitempty" json:"email,omitempty"`
	Username         string        `bson:"username,omitempty" json:"username,omitempty"`
	ProfileImagePath string        `bson:"profileImagePath,omitempty" json:"profileImagePath,omitempty"`
	ProfileImageURL  string        `bson:"-" json:"profileImageUrl,omitempty"`
	CreatedAt        int64         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        int64         `bson:"updatedAt" json:"updatedAt"`
}

type CreateProfileRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type UpdateUsernameRequest struct {
	Username string `json:"username"`
}
