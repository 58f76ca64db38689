package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"treehouse-service/internal/capture"
	"treehouse-service/internal/config"
	"treehouse-service/internal/database/minio"
	"treehouse-service/internal/events"
	"treehouse-service/internal/models"
	"treehouse-service/internal/repository"
	"treehouse-service/pkg/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var pathValidator = utils.NewValidators()

// Narrow views over the repositories, so the chain can be driven
// against fakes without a running MongoDB or MinIO.
type pictureStore interface {
	Create(ctx context.Context, picture *models.Picture) (*models.Picture, error)
	FindByUID(ctx context.Context, uid string) ([]*models.Picture, error)
	FindLatest(ctx context.Context, uid string) (*models.Picture, error)
}

type groupLinkStore interface {
	FindCopy(ctx context.Context, groupID, ownerUID string) (*models.Group, error)
	UpdateGroupImage(ctx context.Context, groupID, posterUID, bucket, imagePath string) error
}

type profileStore interface {
	FindByUID(ctx context.Context, uid string) (*models.UserProfile, error)
	UpdateProfileImage(ctx context.Context, uid, imagePath string) error
}

type cacheStore interface {
	DeleteKey(ctx context.Context, key string) error
}

type blobStore interface {
	Upload(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

type objectURLResolver interface {
	Resolve(ctx context.Context, bucket, path string) string
	ResolveAvatar(ctx context.Context, path string) string
	ResolvePicture(ctx context.Context, path string) string
}

type minioBlobStore struct{}

func (minioBlobStore) Upload(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	info, err := minio.UploadStream(ctx, bucket, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}
	return info.ETag, nil
}

// PhotoService runs the upload-and-link chain: blob upload, URL
// resolution, document write. The three steps are strictly sequential
// and there is no retry or rollback; a blob uploaded before a failed
// document write stays behind, unreferenced. Documents store only the
// object path; URLs are presigned at read time.
type PhotoService struct {
	pictures       pictureStore
	groups         groupLinkStore
	profiles       profileStore
	cache          cacheStore
	blobs          blobStore
	urls           objectURLResolver
	eventPublisher events.Publisher
	config         *config.Config
}

func NewPhotoService(pictureRepo *repository.PictureRepository, groupRepo *repository.GroupRepository, userRepo *repository.UserRepository, redisRepo *repository.RedisRepo, urls *URLResolver, eventPublisher events.Publisher, config *config.Config) *PhotoService {
	return &PhotoService{
		pictures:       pictureRepo,
		groups:         groupRepo,
		profiles:       userRepo,
		cache:          redisRepo,
		blobs:          minioBlobStore{},
		urls:           urls,
		eventPublisher: eventPublisher,
		config:         config,
	}
}

// uploadPhoto performs step (a) of the chain: stream the frame into
// the bucket at objectName.
func (s *PhotoService) uploadPhoto(ctx context.Context, bucket, objectName string, frame *capture.Frame) error {
	if !pathValidator.IsValidObjectPath(objectName) {
		return fmt.Errorf("invalid object path %s", objectName)
	}

	contentType := frame.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	hash := md5.New()
	hashingReader := utils.CreateHashingReader(bytes.NewReader(frame.Data), hash)

	etag, err := s.blobs.Upload(ctx, bucket, objectName, hashingReader, int64(len(frame.Data)), contentType)
	if err != nil {
		return fmt.Errorf("error uploading to MinIO: %w", err)
	}
	log.Printf("Photo uploaded: %s/%s (etag %s, md5 %s)", bucket, objectName, etag, hex.EncodeToString(hash.Sum(nil)))

	return nil
}

// SharePicture captures one frame from the session and appends it to
// the user's photo history.
func (s *PhotoService) SharePicture(ctx context.Context, uid string, sess *capture.Session) (*models.Picture, error) {
	frame, err := sess.Capture(ctx)
	if err != nil {
		return nil, err
	}

	autoID := bson.NewObjectID()
	objectName := fmt.Sprintf("%s/%s.jpg", uid, autoID.Hex())

	if err := s.uploadPhoto(ctx, s.config.MinIO.PictureBucket, objectName, frame); err != nil {
		return nil, err
	}

	url := s.urls.ResolvePicture(ctx, objectName)

	username := ""
	if profile, err := s.profiles.FindByUID(ctx, uid); err == nil {
		username = profile.Username
	}

	picture := &models.Picture{
		ID:          autoID,
		UID:         uid,
		Username:    username,
		StoragePath: objectName,
	}

	created, err := s.pictures.Create(ctx, picture)
	if err != nil {
		// The blob at objectName is now orphaned; nothing references it.
		return nil, fmt.Errorf("error writing picture record: %w", err)
	}

	created.ImageURL = url
	return created, nil
}

// ShareGroupPhoto captures one frame and makes it the group's current
// photo. The final write lands on every member's copy of the group.
func (s *PhotoService) ShareGroupPhoto(ctx context.Context, uid, groupID string, sess *capture.Session) (string, error) {
	if _, err := s.groups.FindCopy(ctx, groupID, uid); err != nil {
		return "", fmt.Errorf("group not found for member %s", uid)
	}

	frame, err := sess.Capture(ctx)
	if err != nil {
		return "", err
	}

	autoID := bson.NewObjectID()
	objectName := fmt.Sprintf("%s/%s.jpg", uid, autoID.Hex())

	if err := s.uploadPhoto(ctx, s.config.MinIO.PictureBucket, objectName, frame); err != nil {
		return "", err
	}

	url := s.urls.ResolvePicture(ctx, objectName)

	if err := s.groups.UpdateGroupImage(ctx, groupID, uid, s.config.MinIO.PictureBucket, objectName); err != nil {
		// The blob at objectName is now orphaned; nothing references it.
		return "", fmt.Errorf("error linking photo to group: %w", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishPhotoShared(ctx, groupID, uid, url); err != nil {
			log.Printf("Failed to publish photo shared event: %v", err)
		}
	}

	return url, nil
}

// UploadProfileImage uploads a profile photo and links it to the
// user's profile document. The path is fixed per user, so a re-upload
// replaces the previous photo in place.
func (s *PhotoService) UploadProfileImage(ctx context.Context, uid string, frame *capture.Frame) (string, error) {
	objectName := fmt.Sprintf("%s.jpg", uid)

	if err := s.uploadPhoto(ctx, s.config.MinIO.ProfileBucket, objectName, frame); err != nil {
		return "", err
	}

	url := s.urls.ResolveAvatar(ctx, objectName)

	if err := s.profiles.UpdateProfileImage(ctx, uid, objectName); err != nil {
		return "", fmt.Errorf("error linking profile image: %w", err)
	}

	if err := s.cache.DeleteKey(ctx, "profile-cached:"+uid); err != nil {
		log.Printf("Failed to invalidate profile cache for user %s: %v", uid, err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishAvatarUpdated(ctx, uid, url); err != nil {
			log.Printf("Failed to publish avatar updated event: %v", err)
		}
	}

	return url, nil
}

// LatestPicture returns the most recent entry of a user's history
func (s *PhotoService) LatestPicture(ctx context.Context, uid string) (*models.Picture, error) {
	picture, err := s.pictures.FindLatest(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("no pictures found for user %s", uid)
		}
		return nil, fmt.Errorf("failed to get latest picture: %w", err)
	}

	picture.ImageURL = s.urls.ResolvePicture(ctx, picture.StoragePath)
	return picture, nil
}

// ListPictures returns a user's photo history, newest first
func (s *PhotoService) ListPictures(ctx context.Context, uid string) ([]*models.Picture, error) {
	pictures, err := s.pictures.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	for _, picture := range pictures {
		picture.ImageURL = s.urls.ResolvePicture(ctx, picture.StoragePath)
	}
	return pictures, nil
}
