package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"treehouse-service/internal/events"
	"treehouse-service/internal/models"
	"treehouse-service/internal/repository"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MaxUsernameLength mirrors the sign-up screen's "under 15 characters"
// rule; the service is the only place it is actually enforced.
const MaxUsernameLength = 15

type UserService struct {
	userRepo       *repository.UserRepository
	redisRepo      *repository.RedisRepo
	urls           *URLResolver
	eventPublisher events.Publisher
}

func NewUserService(userRepo *repository.UserRepository, redisRepo *repository.RedisRepo, urls *URLResolver, eventPublisher events.Publisher) *UserService {
	return &UserService{
		userRepo:       userRepo,
		redisRepo:      redisRepo,
		urls:           urls,
		eventPublisher: eventPublisher,
	}
}

// CreateProfile creates the profile document for a first sign-in
func (s *UserService) CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.UserProfile, error) {
	if req.UID == "" {
		return nil, fmt.Errorf("uid is required")
	}

	existing, err := s.userRepo.FindByUID(ctx, req.UID)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("profile already exists for user %s", req.UID)
	}

	profile := &models.UserProfile{
		UID:   req.UID,
		Email: req.Email,
	}

	created, err := s.userRepo.Create(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishProfileCreated(ctx, created.UID); err != nil {
			log.Printf("Failed to publish profile created event: %v", err)
		}
	}

	return created, nil
}

// GetProfile retrieves a profile by uid, read-through the cache
func (s *UserService) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	if uid == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	var cached models.UserProfile
	if err := s.redisRepo.GetStructCached(ctx, "profile-cached:", uid, &cached); err == nil && cached.UID == uid {
		s.resolveProfile(ctx, &cached)
		return &cached, nil
	}

	profile, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("profile not found for user %s", uid)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if _, err := s.redisRepo.SaveStructCached(ctx, uid, "profile-cached:", profile, 24); err != nil {
		log.Printf("Failed to cache profile for user %s: %v", uid, err)
	}

	s.resolveProfile(ctx, profile)
	return profile, nil
}

// resolveProfile mints the avatar URL from the stored object path. It
// runs on every read, cache hits included, so a profile cached for a
// day never serves an expired URL.
func (s *UserService) resolveProfile(ctx context.Context, profile *models.UserProfile) {
	profile.ProfileImageURL = s.urls.ResolveAvatar(ctx, profile.ProfileImagePath)
}

// SetUsername validates and stores the chosen username
func (s *UserService) SetUsername(ctx context.Context, uid, username string) (*models.UserProfile, error) {
	if uid == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}

	updated, err := s.userRepo.UpdateUsername(ctx, uid, username)
	if err != nil {
		return nil, fmt.Errorf("failed to set username: %w", err)
	}

	s.invalidateCache(ctx, uid)

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishProfileUpdated(ctx, uid, username); err != nil {
			log.Printf("Failed to publish profile updated event: %v", err)
		}
	}

	s.resolveProfile(ctx, updated)
	return updated, nil
}

func (s *UserService) invalidateCache(ctx context.Context, uid string) {
	if err := s.redisRepo.DeleteKey(ctx, "profile-cached:"+uid); err != nil {
		log.Printf("Failed to invalidate profile cache for user %s: %v", uid, err)
	}
}
