package handlers

import (
	"context"
	"log"
	"strings"
	"time"
	"treehouse-service/internal/middleware"
	"treehouse-service/internal/models"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	userService  UserService
	photoService PhotoService
}

func NewUserHandler(userService UserService, photoService PhotoService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		photoService: photoService,
	}
}

func (h *UserHandler) RegisterRoutes(app *fiber.App) {
	// Public profile view by uid
	publicGroup := app.Group("/public/users")
	publicGroup.Get("/:uid", h.GetPublicProfile)

	// Self-service endpoints
	protectedGroup := app.Group("/protected/users")
	protectedGroup.Get("/me", h.GetMe, middleware.PermissionRequired(middleware.ReadProfilePermission))
	protectedGroup.Post("/me", h.CreateMe, middleware.PermissionRequired(middleware.WriteProfilePermission))
	protectedGroup.Put("/me/username", h.SetUsername, middleware.PermissionRequired(middleware.UpdateProfilePermission))
	protectedGroup.Post("/me/avatar", h.UploadProfileImage, middleware.PermissionRequired(middleware.UpdateProfilePermission))
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("Failed to get profile for user %s: %v", userID, err)

		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found for this user",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve profile",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *UserHandler) CreateMe(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	var req models.CreateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.UID = userID

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.userService.CreateProfile(ctx, &req)
	if err != nil {
		log.Printf("Failed to create profile for user %s: %v", userID, err)

		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Profile already exists",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create profile",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Profile created successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *UserHandler) SetUsername(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	var req models.UpdateUsernameRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !fileValidator.IsValidUsername(req.Username) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username must be 1 to 15 characters",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.userService.SetUsername(ctx, userID, req.Username)
	if err != nil {
		log.Printf("Failed to set username for user %s: %v", userID, err)

		if strings.Contains(err.Error(), "at most") || strings.Contains(err.Error(), "required") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set username",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Username updated successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *UserHandler) UploadProfileImage(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No avatar file provided",
		})
	}

	if err := fileValidator.ValidateAvatarFile(fileHeader); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	frame, err := readFrame(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	url, err := h.photoService.UploadProfileImage(c.Context(), userID, frame)
	if err != nil {
		log.Printf("Error uploading profile image for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload profile image",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Profile image uploaded successfully",
		"data": fiber.Map{
			"profileImageUrl": url,
		},
	})
}

func (h *UserHandler) GetPublicProfile(c fiber.Ctx) error {
	uid := c.Params("uid")
	if uid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := h.userService.GetProfile(ctx, uid)
	if err != nil {
		log.Printf("Failed to get public profile for user %s: %v", uid, err)

		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve profile",
		})
	}

	// Public view carries only what member pickers need
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"profile": fiber.Map{
				"uid":             profile.UID,
				"username":        profile.Username,
				"profileImageUrl": profile.ProfileImageURL,
			},
		},
	})
}
