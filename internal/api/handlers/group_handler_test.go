package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"treehouse-service/internal/capture"
	"treehouse-service/internal/models"

	"github.com/gofiber/fiber/v3"
)

type stubGroupService struct {
	createCalls []models.CreateGroupRequest
}

func (s *stubGroupService) CreateGroup(ctx context.Context, creatorUID string, req *models.CreateGroupRequest) (*models.Group, error) {
	s.createCalls = append(s.createCalls, *req)
	return &models.Group{
		GroupID:    "g1",
		OwnerUID:   creatorUID,
		GroupName:  req.GroupName,
		MembersUID: []string{creatorUID},
	}, nil
}

func (s *stubGroupService) GetGroup(ctx context.Context, groupID, viewerUID string) (*models.Group, error) {
	return nil, fmt.Errorf("group not found")
}

func (s *stubGroupService) ListGroups(ctx context.Context, viewerUID string) ([]*models.Group, error) {
	return nil, nil
}

func (s *stubGroupService) WaitingOn(ctx context.Context, groupID, viewerUID string) ([]string, error) {
	return nil, fmt.Errorf("group not found")
}

type stubPhotoService struct{}

func (stubPhotoService) SharePicture(ctx context.Context, uid string, sess *capture.Session) (*models.Picture, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubPhotoService) ShareGroupPhoto(ctx context.Context, uid, groupID string, sess *capture.Session) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (stubPhotoService) UploadProfileImage(ctx context.Context, uid string, frame *capture.Frame) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (stubPhotoService) LatestPicture(ctx context.Context, uid string) (*models.Picture, error) {
	return nil, fmt.Errorf("no pictures found for user %s", uid)
}

func (stubPhotoService) ListPictures(ctx context.Context, uid string) ([]*models.Picture, error) {
	return nil, nil
}

type stubUserService struct{}

func (stubUserService) CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.UserProfile, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubUserService) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	return nil, fmt.Errorf("profile not found for user %s", uid)
}

func (stubUserService) SetUsername(ctx context.Context, uid, username string) (*models.UserProfile, error) {
	return nil, fmt.Errorf("not implemented")
}

func newGroupTestApp(groups *stubGroupService) *fiber.App {
	app := fiber.New()
	NewGroupHandler(groups, stubPhotoService{}, stubUserService{}).RegisterRoutes(app)
	return app
}

func createGroupRequest(t *testing.T, req models.CreateGroupRequest) *http.Request {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/protected/groups/", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-User-ID", "u1")
	httpReq.Header.Set("X-User-Permissions", "create:group")
	return httpReq
}

// An unnamed group is valid; the create route must hand it to the
// service instead of rejecting it at the door.
func TestCreateGroupAllowsEmptyName(t *testing.T) {
	groups := &stubGroupService{}
	app := newGroupTestApp(groups)

	resp, err := app.Test(createGroupRequest(t, models.CreateGroupRequest{
		GroupName: "",
		Invited:   []models.InvitedUser{},
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	if len(groups.createCalls) != 1 {
		t.Fatalf("service calls = %d, want 1", len(groups.createCalls))
	}
	if groups.createCalls[0].GroupName != "" {
		t.Errorf("groupName = %q, want empty preserved", groups.createCalls[0].GroupName)
	}
}

func TestCreateGroupRequiresUser(t *testing.T) {
	groups := &stubGroupService{}
	app := newGroupTestApp(groups)

	req := createGroupRequest(t, models.CreateGroupRequest{GroupName: "Trip"})
	req.Header.Del("X-User-ID")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
	if len(groups.createCalls) != 0 {
		t.Errorf("service calls = %d, want 0", len(groups.createCalls))
	}
}

func TestCreateGroupRequiresPermission(t *testing.T) {
	groups := &stubGroupService{}
	app := newGroupTestApp(groups)

	req := createGroupRequest(t, models.CreateGroupRequest{GroupName: "Trip"})
	req.Header.Set("X-User-Permissions", "read:group")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
	if len(groups.createCalls) != 0 {
		t.Errorf("service calls = %d, want 0", len(groups.createCalls))
	}
}
