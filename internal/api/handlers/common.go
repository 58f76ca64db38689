package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"treehouse-service/internal/capture"
	"treehouse-service/internal/models"
	"treehouse-service/pkg/utils"
)

var (
	fileValidator = utils.NewValidators()
	typeDetector  = utils.NewContentTypeDetector()
)

// The handlers depend on the slices of the services they actually
// call, so routes can be exercised against stubs in tests.
type GroupService interface {
	CreateGroup(ctx context.Context, creatorUID string, req *models.CreateGroupRequest) (*models.Group, error)
	GetGroup(ctx context.Context, groupID, viewerUID string) (*models.Group, error)
	ListGroups(ctx context.Context, viewerUID string) ([]*models.Group, error)
	WaitingOn(ctx context.Context, groupID, viewerUID string) ([]string, error)
}

type PhotoService interface {
	SharePicture(ctx context.Context, uid string, sess *capture.Session) (*models.Picture, error)
	ShareGroupPhoto(ctx context.Context, uid, groupID string, sess *capture.Session) (string, error)
	UploadProfileImage(ctx context.Context, uid string, frame *capture.Frame) (string, error)
	LatestPicture(ctx context.Context, uid string) (*models.Picture, error)
	ListPictures(ctx context.Context, uid string) ([]*models.Picture, error)
}

type UserService interface {
	CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.UserProfile, error)
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	SetUsername(ctx context.Context, uid, username string) (*models.UserProfile, error)
}

// readFrame turns an uploaded file into a capture frame, sniffing the
// content type when the client did not send one. Size and extension
// validation is the caller's job since avatars and photos carry
// different limits.
func readFrame(fileHeader *multipart.FileHeader) (*capture.Frame, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = typeDetector.DetectContentType(fileHeader.Filename, data)
	}

	// Sniffing can still come back octet-stream for formats the
	// detector does not know, such as heic; only reject types it
	// positively identifies as non-image.
	if contentType != "application/octet-stream" && !typeDetector.IsImageContentType(contentType) {
		return nil, fmt.Errorf("unsupported content type %s", contentType)
	}

	return &capture.Frame{
		Data:        data,
		ContentType: contentType,
	}, nil
}
