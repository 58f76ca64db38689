package handlers

import (
	"context"
	"log"
	"strings"
	"time"
	"treehouse-service/internal/capture"
	"treehouse-service/internal/middleware"

	"github.com/gofiber/fiber/v3"
)

type PictureHandler struct {
	photoService PhotoService
}

func NewPictureHandler(photoService PhotoService) *PictureHandler {
	return &PictureHandler{
		photoService: photoService,
	}
}

func (h *PictureHandler) RegisterRoutes(app *fiber.App) {
	protectedGroup := app.Group("/protected/pictures")
	protectedGroup.Post("/", h.SharePicture, middleware.PermissionRequired(middleware.SharePicturePermission))
	protectedGroup.Get("/", h.ListPictures, middleware.PermissionRequired(middleware.ReadPicturePermission))
	protectedGroup.Get("/latest", h.LatestPicture, middleware.PermissionRequired(middleware.ReadPicturePermission))
}

// SharePicture captures and stores a personal picture outside any group
func (h *PictureHandler) SharePicture(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not authenticated",
		})
	}

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

	picture, err := h.photoService.SharePicture(c.Context(), userID, sess)
	if err != nil {
		log.Printf("Failed to share picture for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to share picture",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Picture shared successfully",
		"data": fiber.Map{
			"picture": picture,
		},
	})
}

func (h *PictureHandler) ListPictures(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pictures, err := h.photoService.ListPictures(ctx, userID)
	if err != nil {
		log.Printf("Failed to list pictures for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list pictures",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"pictures": pictures,
			"count":    len(pictures),
		},
	})
}

func (h *PictureHandler) LatestPicture(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	picture, err := h.photoService.LatestPicture(ctx, userID)
	if err != nil {
		log.Printf("Failed to get latest picture for user %s: %v", userID, err)

		if strings.Contains(err.Error(), "no pictures found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No pictures yet",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve latest picture",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"picture": picture,
		},
	})
}
