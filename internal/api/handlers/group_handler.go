package handlers

import (
	"context"
	"log"
	"strings"
	"time"
	"treehouse-service/internal/capture"
	"treehouse-service/internal/middleware"
	"treehouse-service/internal/models"
	"treehouse-service/internal/session"

	"github.com/gofiber/fiber/v3"
)

type GroupHandler struct {
	groupService GroupService
	photoService PhotoService
	userService  UserService
}

func NewGroupHandler(groupService GroupService, photoService PhotoService, userService UserService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		photoService: photoService,
		userService:  userService,
	}
}

func (h *GroupHandler) RegisterRoutes(app *fiber.App) {
	protectedGroup := app.Group("/protected/groups")
	protectedGroup.Post("/", h.CreateGroup, middleware.PermissionRequired(middleware.CreateGroupPermission))
	protectedGroup.Get("/", h.ListGroups, middleware.PermissionRequired(middleware.ReadGroupPermission))
	protectedGroup.Get("/:id", h.GetGroup, middleware.PermissionRequired(middleware.ReadGroupPermission))
	protectedGroup.Get("/:id/waiting", h.WaitingOn, middleware.PermissionRequired(middleware.ReadGroupPermission))
	protectedGroup.Get("/:id/view", h.GetSessionView, middleware.PermissionRequired(middleware.ReadGroupPermission))
	protectedGroup.Post("/:id/photo", h.ShareGroupPhoto, middleware.PermissionRequired(middleware.SharePicturePermission))
}

func (h *GroupHandler) CreateGroup(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	var req models.CreateGroupRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// An empty group name is allowed; unnamed groups render without a
	// title.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	group, err := h.groupService.CreateGroup(ctx, userID, &req)
	if err != nil {
		log.Printf("Failed to create group for user %s: %v", userID, err)

		if strings.Contains(err.Error(), "at most") || strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create group",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Group created successfully",
		"data": fiber.Map{
			"group": group,
		},
	})
}

func (h *GroupHandler) ListGroups(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	groups, err := h.groupService.ListGroups(ctx, userID)
	if err != nil {
		log.Printf("Failed to list groups for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list groups",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"groups": groups,
			"count":  len(groups),
		},
	})
}

func (h *GroupHandler) GetGroup(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	groupID := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	group, err := h.groupService.GetGroup(ctx, groupID, userID)
	if err != nil {
		log.Printf("Failed to get group %s for user %s: %v", groupID, userID, err)

		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Group not found",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve group",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"group": group,
		},
	})
}

func (h *GroupHandler) WaitingOn(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	groupID := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	waiting, err := h.groupService.WaitingOn(ctx, groupID, userID)
	if err != nil {
		log.Printf("Failed to get waiting list for group %s: %v", groupID, err)

		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Group not found",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve waiting list",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"waitingOn": waiting,
			"count":     len(waiting),
		},
	})
}

// GetSessionView assembles the render model for a group session
// screen. Each fetch resolves independently and a failure only leaves
// its slice of the view empty; the screen renders whatever loaded.
func (h *GroupHandler) GetSessionView(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	groupID := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	state := session.NewState(userID)

	if profile, err := h.userService.GetProfile(ctx, userID); err == nil {
		state.OnProfileLoaded(profile)
	} else {
		log.Printf("Session view: profile fetch failed for user %s: %v", userID, err)
	}

	group, err := h.groupService.GetGroup(ctx, groupID, userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Group not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve group",
		})
	}
	state.OnGroupLoaded(group)
	if group.HasPosted(userID) {
		state.OnPhotoShared(group.GroupImageURL, group.MemberPosts[userID])
	}

	if latest, err := h.photoService.LatestPicture(ctx, userID); err == nil {
		state.OnLatestLoaded(latest)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"view": session.Project(state),
		},
	})
}

// ShareGroupPhoto runs the full capture-upload-link chain for a group.
// Each request owns a fresh capture session, so a retry from the client
// is a new capture rather than a queued press.
func (h *GroupHandler) ShareGroupPhoto(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	groupID := c.Params("id")

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No photo file provided",
		})
	}

	if err := fileValidator.ValidatePhotoFile(fileHeader); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	frame, err := readFrame(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read photo file",
		})
	}

	sess := capture.NewSession(capture.StaticSource(frame.Data, frame.ContentType))
	defer sess.Close()

	url, err := h.photoService.ShareGroupPhoto(c.Context(), userID, groupID, sess)
	if err != nil {
		log.Printf("Failed to share group photo for user %s in group %s: %v", userID, groupID, err)

		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Group not found",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to share photo",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Photo shared successfully",
		"data": fiber.Map{
			"imageUrl": url,
		},
	})
}
