package service

import (
	"reflect"
	"strings"
	"testing"
	"treehouse-service/internal/models"
)

func TestBuildGroupCopies(t *testing.T) {
	creator := &models.UserProfile{UID: "c", ProfileImagePath: "c.jpg"}
	invitees := []*models.UserProfile{
		{UID: "i1", ProfileImagePath: "i1.jpg"},
		{UID: "i2", ProfileImagePath: "i2.jpg"},
	}

	copies := buildGroupCopies("g1", "Trip", "profile-images", creator, invitees, 1234)

	if len(copies) != 3 {
		t.Fatalf("expected one copy per member, got %d", len(copies))
	}

	wantMembers := []string{"c.jpg", "i1.jpg", "i2.jpg"}
	wantUIDs := []string{"c", "i1", "i2"}

	for i, copy := range copies {
		if copy.GroupID != "g1" {
			t.Errorf("copy %d: groupId = %s, want g1", i, copy.GroupID)
		}
		if copy.GroupName != "Trip" {
			t.Errorf("copy %d: groupName = %s, want Trip", i, copy.GroupName)
		}
		if !reflect.DeepEqual(copy.Members, wantMembers) {
			t.Errorf("copy %d: members = %v, want %v", i, copy.Members, wantMembers)
		}
		if !reflect.DeepEqual(copy.MembersUID, wantUIDs) {
			t.Errorf("copy %d: membersUid = %v, want %v", i, copy.MembersUID, wantUIDs)
		}
		if copy.GroupImageBucket != "profile-images" || copy.GroupImagePath != "c.jpg" {
			t.Errorf("copy %d: group image = %s/%s, want creator avatar path", i, copy.GroupImageBucket, copy.GroupImagePath)
		}
		if copy.Timestamp != 1234 {
			t.Errorf("copy %d: timestamp = %d", i, copy.Timestamp)
		}
		if copy.OwnerUID != wantUIDs[i] {
			t.Errorf("copy %d: ownerUid = %s, want %s", i, copy.OwnerUID, wantUIDs[i])
		}
	}
}

// Stored copies carry object paths only; presigned URLs are minted at
// read time and must never land in the document.
func TestBuildGroupCopiesStoreNoURLs(t *testing.T) {
	creator := &models.UserProfile{
		UID:              "c",
		ProfileImagePath: "c.jpg",
		ProfileImageURL:  "https://minio.local/profile-images/c.jpg?X-Amz-Expires=86400",
	}
	invitees := []*models.UserProfile{{UID: "i1", ProfileImagePath: "i1.jpg"}}

	copies := buildGroupCopies("g1", "Trip", "profile-images", creator, invitees, 1)

	for i, copy := range copies {
		if copy.GroupImageURL != "" {
			t.Errorf("copy %d: groupImageUrl = %q, want unset", i, copy.GroupImageURL)
		}
		for j, member := range copy.Members {
			if strings.Contains(member, "://") {
				t.Errorf("copy %d: members[%d] = %q, want an object path", i, j, member)
			}
		}
		if copy.GroupImagePath != "c.jpg" {
			t.Errorf("copy %d: groupImagePath = %q, want c.jpg", i, copy.GroupImagePath)
		}
	}
}

func TestBuildGroupCopiesCreatorOnly(t *testing.T) {
	creator := &models.UserProfile{UID: "c", ProfileImagePath: "c.jpg"}

	copies := buildGroupCopies("g1", "", "profile-images", creator, nil, 1)

	if len(copies) != 1 {
		t.Fatalf("expected a single copy, got %d", len(copies))
	}
	if copies[0].OwnerUID != "c" {
		t.Errorf("ownerUid = %s, want c", copies[0].OwnerUID)
	}
	if copies[0].GroupName != "" {
		t.Errorf("empty group name should be preserved, got %q", copies[0].GroupName)
	}
	if !reflect.DeepEqual(copies[0].Members, []string{"c.jpg"}) {
		t.Errorf("members = %v", copies[0].Members)
	}
}

// A creator with no avatar yet yields a group with no image location
// at all, not a dangling bucket name.
func TestBuildGroupCopiesNoCreatorAvatar(t *testing.T) {
	creator := &models.UserProfile{UID: "c"}

	copies := buildGroupCopies("g1", "Trip", "profile-images", creator, nil, 1)

	if copies[0].GroupImageBucket != "" || copies[0].GroupImagePath != "" {
		t.Errorf("group image = %s/%s, want empty", copies[0].GroupImageBucket, copies[0].GroupImagePath)
	}
}

func TestBuildGroupCopiesMemberBounds(t *testing.T) {
	creator := &models.UserProfile{UID: "c", ProfileImagePath: "c.jpg"}

	testCases := []struct {
		name       string
		invited    int
		wantCopies int
	}{
		{"no invitees", 0, 1},
		{"one invitee", 1, 2},
		{"full group", models.MaxInvitedMembers, models.MaxInvitedMembers + 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			invitees := make([]*models.UserProfile, tc.invited)
			for i := range invitees {
				invitees[i] = &models.UserProfile{UID: string(rune('a' + i))}
			}

			copies := buildGroupCopies("g", "n", "profile-images", creator, invitees, 1)
			if len(copies) != tc.wantCopies {
				t.Errorf("copies = %d, want %d", len(copies), tc.wantCopies)
			}
			if len(copies[0].Members) < 1 || len(copies[0].Members) > 6 {
				t.Errorf("members length %d outside 1..6", len(copies[0].Members))
			}
		})
	}
}
