package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MaxInvitedMembers caps how many users can be invited into a group,
// not counting the creator.
const MaxInvitedMembers = 5

// Group is one denormalized copy of a group document. One copy exists
// per member, keyed by (GroupID, OwnerUID); all copies share GroupID
// and are written in a single transaction at creation time.
//
// Members holds avatar object paths (profile bucket), parallel to
// MembersUID. The group image is stored as a bucket + path pair: it
// starts as the creator's avatar in the profile bucket and moves to
// the picture bucket when a photo is shared. Presigned URLs are never
// persisted; the service resolves Members and GroupImageURL at read
// time so served links stay fresh.
type Group struct {
	ID               bson.ObjectID    `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID          string           `bson:"groupId" json:"groupId"`
	OwnerUID         string           `bson:"ownerUid" json:"ownerUid"`
	GroupName        string           `bson:"groupName" json:"groupName"`
	Members          []string         `bson:"members" json:"members"`
	MembersUID       []string         `bson:"membersUid" json:"membersUid"`
	GroupImageBucket string           `bson:"groupImageBucket,omitempty" json:"-"`
	GroupImagePath   string           `bson:"groupImagePath,omitempty" json:"-"`
	GroupImageURL    string           `bson:"-" json:"groupImageUrl"`
	MemberPosts      map[string]int64 `bson:"memberPosts,omitempty" json:"memberPosts,omitempty"`
	Timestamp        int64            `bson:"timestamp" json:"timestamp"`
}

// InvitedUser names a candidate member. Avatars are resolved
// server-side from the invitee's profile, never trusted from the
// request.
type InvitedUser struct {
	UID string `json:"uid"`
}

type CreateGroupRequest struct {
	GroupName string        `json:"groupName"`
	Invited   []InvitedUser `json:"invited"`
}

// HasPosted reports whether the member has shared a photo into this
// group since creation.
func (g *Group) HasPosted(uid string) bool {
	_, ok := g.MemberPosts[uid]
	return ok
}

// WaitingOn returns the avatar URLs of members who have not yet shared
// a photo, excluding the viewer. Exclusion is by uid, so two members
// with the same avatar URL are kept apart.
func (g *Group) WaitingOn(viewerUID string) []string {
	waiting := []string{}
	for i, uid := range g.MembersUID {
		if uid == viewerUID {
			continue
		}
		if g.HasPosted(uid) {
			continue
		}
		if i < len(g.Members) {
			waiting = append(waiting, g.Members[i])
		}
	}
	return waiting
}
