package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Picture is one entry in a user's photo history. Append-only; there
// is no update or delete path. Only StoragePath is persisted; ImageURL
// is a presigned URL resolved at read time and never written to
// MongoDB.
type Picture struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UID         string        `bson:"uid" json:"uid"`
	Username    string        `bson:"username,omitempty" json:"username,omitempty"`
	ImageURL    string        `bson:"-" json:"imageUrl"`
	StoragePath string        `bson:"storagePath" json:"storagePath"`
	Timestamp   int64         `bson:"timestamp" json:"timestamp"`
}
