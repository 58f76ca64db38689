package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Profile events
	EventTypeProfileCreated EventType = "profile.created"
	EventTypeProfileUpdated EventType = "profile.updated"
	EventTypeAvatarUpdated  EventType = "avatar.updated"

	// Group events
	EventTypeGroupCreated EventType = "group.created"
	EventTypePhotoShared  EventType = "photo.shared"

	// Consumed from the auth side
	EventTypeUserRegistered EventType = "user.registered"
)

// BaseEvent represents the common fields for all events
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

// ProfileEvent represents an event related to a user profile
type ProfileEvent struct {
	BaseEvent
	UID      string `json:"uid"`
	Username string `json:"username,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// GroupEvent represents an event related to a group
type GroupEvent struct {
	BaseEvent
	GroupID    string   `json:"groupId"`
	CreatorUID string   `json:"creatorUid,omitempty"`
	MembersUID []string `json:"membersUid,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

// UserRegisteredEvent is consumed from the auth exchange when a user
// completes their first sign-in.
type UserRegisteredEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func NewProfileCreatedEvent(uid string) *ProfileEvent {
	return &ProfileEvent{
		BaseEvent: newBaseEvent(EventTypeProfileCreated),
		UID:       uid,
	}
}

func NewProfileUpdatedEvent(uid, username string) *ProfileEvent {
	return &ProfileEvent{
		BaseEvent: newBaseEvent(EventTypeProfileUpdated),
		UID:       uid,
		Username:  username,
	}
}

func NewAvatarUpdatedEvent(uid, imageURL string) *ProfileEvent {
	return &ProfileEvent{
		BaseEvent: newBaseEvent(EventTypeAvatarUpdated),
		UID:       uid,
		ImageURL:  imageURL,
	}
}

func NewGroupCreatedEvent(groupID, creatorUID string, membersUID []string) *GroupEvent {
	return &GroupEvent{
		BaseEvent:  newBaseEvent(EventTypeGroupCreated),
		GroupID:    groupID,
		CreatorUID: creatorUID,
		MembersUID: membersUID,
	}
}

func NewPhotoSharedEvent(groupID, posterUID, imageURL string) *GroupEvent {
	return &GroupEvent{
		BaseEvent:  newBaseEvent(EventTypePhotoShared),
		GroupID:    groupID,
		CreatorUID: posterUID,
		ImageURL:   imageURL,
	}
}

func newBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}
