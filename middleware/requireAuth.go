package middleware

import (
	"strings"

	"attendance_ms/dtos/response"
	"attendance_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID  = "userId"
	LocalProfile = "profile"
)

// AuthMiddleware accepts a bearer token whose subject is a profile id and
// stores that id under LocalUserID.
func AuthMiddleware(jwt services.IJWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthenticated(c, "Missing or invalid token")
		}

		token, err := jwt.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return unauthenticated(c, "Invalid token")
		}

		userID, err := jwt.Subject(token)
		if err != nil {
			return unauthenticated(c, "Invalid token")
		}
		c.Locals(LocalUserID, userID)

		return c.Next()
	}
}

// UserID returns the id stored by AuthMiddleware.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(LocalUserID).(uuid.UUID)
	return id
}

func unauthenticated(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(response.ErrorResponse{
		Error: msg,
		Code:  response.CodeUnauthenticated,
	})
}
