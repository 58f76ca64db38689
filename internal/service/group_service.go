package service

import (
	"context"
	"fmt"
	"log"
	"time"
	"treehouse-service/internal/events"
	"treehouse-service/internal/models"
	"treehouse-service/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type GroupService struct {
	groupRepo      *repository.GroupRepository
	userRepo       *repository.UserRepository
	urls           *URLResolver
	eventPublisher events.Publisher
}

func NewGroupService(groupRepo *repository.GroupRepository, userRepo *repository.UserRepository, urls *URLResolver, eventPublisher events.Publisher) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		urls:           urls,
		eventPublisher: eventPublisher,
	}
}

// CreateGroup persists a new group visible to the creator and every
// invitee. One copy per member is written in a single transaction; any
// failure aborts the whole batch and the caller gets nothing. There is
// no deduplication key, so two rapid requests create two groups.
func (s *GroupService) CreateGroup(ctx context.Context, creatorUID string, req *models.CreateGroupRequest) (*models.Group, error) {
	if creatorUID == "" {
		return nil, fmt.Errorf("creator uid is required")
	}
	if len(req.Invited) > models.MaxInvitedMembers {
		return nil, fmt.Errorf("at most %d members can be invited", models.MaxInvitedMembers)
	}

	creator, err := s.userRepo.FindByUID(ctx, creatorUID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("profile not found for creator %s", creatorUID)
		}
		return nil, fmt.Errorf("failed to resolve creator profile: %w", err)
	}

	invitees, err := s.resolveInvitees(ctx, req.Invited)
	if err != nil {
		return nil, err
	}

	groupID := uuid.NewString()
	copies := buildGroupCopies(groupID, req.GroupName, s.urls.minIO.ProfileBucket, creator, invitees, time.Now().Unix())

	if err := s.groupRepo.CreateFanOut(ctx, copies); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishGroupCreated(ctx, groupID, creatorUID, copies[0].MembersUID); err != nil {
			log.Printf("Failed to publish group created event: %v", err)
		}
	}

	created := copies[0]
	s.resolveGroup(ctx, created)
	return created, nil
}

// resolveInvitees loads invitee profiles in one query. An invitee with
// no profile still becomes a member; they just have no avatar yet.
func (s *GroupService) resolveInvitees(ctx context.Context, invited []models.InvitedUser) ([]*models.UserProfile, error) {
	if len(invited) == 0 {
		return nil, nil
	}

	uids := make([]string, 0, len(invited))
	for _, inv := range invited {
		uids = append(uids, inv.UID)
	}

	profiles, err := s.userRepo.FindByUIDs(ctx, uids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invitee profiles: %w", err)
	}

	byUID := make(map[string]*models.UserProfile, len(profiles))
	for _, p := range profiles {
		byUID[p.UID] = p
	}

	invitees := make([]*models.UserProfile, 0, len(uids))
	for _, uid := range uids {
		if p, ok := byUID[uid]; ok {
			invitees = append(invitees, p)
		} else {
			invitees = append(invitees, &models.UserProfile{UID: uid})
		}
	}

	return invitees, nil
}

// buildGroupCopies constructs the identical-content fan-out documents,
// one per member, creator first in both parallel arrays. Members holds
// avatar object paths, not URLs. The group image starts as the
// creator's own avatar until the first photo lands.
func buildGroupCopies(groupID, groupName, profileBucket string, creator *models.UserProfile, invitees []*models.UserProfile, now int64) []*models.Group {
	members := make([]string, 0, len(invitees)+1)
	membersUID := make([]string, 0, len(invitees)+1)

	members = append(members, creator.ProfileImagePath)
	membersUID = append(membersUID, creator.UID)
	for _, inv := range invitees {
		members = append(members, inv.ProfileImagePath)
		membersUID = append(membersUID, inv.UID)
	}

	imageBucket := ""
	if creator.ProfileImagePath != "" {
		imageBucket = profileBucket
	}

	copies := make([]*models.Group, 0, len(membersUID))
	for _, ownerUID := range membersUID {
		copies = append(copies, &models.Group{
			GroupID:          groupID,
			OwnerUID:         ownerUID,
			GroupName:        groupName,
			Members:          members,
			MembersUID:       membersUID,
			GroupImageBucket: imageBucket,
			GroupImagePath:   creator.ProfileImagePath,
			Timestamp:        now,
		})
	}

	return copies
}

// resolveGroup fills in the presigned URLs a stored copy omits: the
// group image and every member avatar.
func (s *GroupService) resolveGroup(ctx context.Context, group *models.Group) {
	group.GroupImageURL = s.urls.Resolve(ctx, group.GroupImageBucket, group.GroupImagePath)
	for i, path := range group.Members {
		group.Members[i] = s.urls.ResolveAvatar(ctx, path)
	}
}

// GetGroup retrieves the viewer's copy of a group. Non-members have no
// copy, so they get a not-found.
func (s *GroupService) GetGroup(ctx context.Context, groupID, viewerUID string) (*models.Group, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group ID is required")
	}

	group, err := s.groupRepo.FindCopy(ctx, groupID, viewerUID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("group not found")
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	s.resolveGroup(ctx, group)
	return group, nil
}

// ListGroups lists the viewer's groups, newest first
func (s *GroupService) ListGroups(ctx context.Context, viewerUID string) ([]*models.Group, error) {
	groups, err := s.groupRepo.FindByOwner(ctx, viewerUID)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		s.resolveGroup(ctx, group)
	}
	return groups, nil
}

// WaitingOn returns the avatars of members still to post today
func (s *GroupService) WaitingOn(ctx context.Context, groupID, viewerUID string) ([]string, error) {
	group, err := s.GetGroup(ctx, groupID, viewerUID)
	if err != nil {
		return nil, err
	}
	return group.WaitingOn(viewerUID), nil
}
