package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
)

const (
	// Profile permissions
	ReadProfilePermission   = "read:profile"
	WriteProfilePermission  = "write:profile"
	UpdateProfilePermission = "update:profile"

	// Group permissions
	ReadGroupPermission   = "read:group"
	CreateGroupPermission = "create:group"

	// Photo permissions
	ReadPicturePermission  = "read:picture"
	SharePicturePermission = "share:picture"
)

// PermissionRequired checks the gateway-populated X-User-Permissions
// header for the required permission. Admin and manager roles pass
// every check.
func PermissionRequired(requiredPermission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		log.Println("Permission required function called from", c.IP(), "Calling", c.Method(), "Request", c.OriginalURL())
		userPermissions := c.Get("X-User-Permissions")
		hasPermission := false
		if userPermissions != "" {
			permissions := strings.Split(userPermissions, ",")

			for _, perm := range permissions {
				if perm == requiredPermission || strings.HasPrefix(perm, "admin") || strings.HasPrefix(perm, "manager") {
					hasPermission = true
					break
				}
			}
		}

		if !hasPermission {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
