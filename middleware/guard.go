package middleware

import (
	"context"
	"errors"

	"attendance_ms/domain"
	"attendance_ms/dtos/response"
	"attendance_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProfileLoader interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// RequireAccess admits only callers whose profile state passes domain.Admit
// for role. It must run after AuthMiddleware.
func RequireAccess(profiles ProfileLoader, role domain.Role, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := profiles.Get(c.UserContext(), UserID(c))
		if err != nil && !errors.Is(err, services.ErrUnauthenticated) {
			logger.Error("failed to load profile", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(response.ErrorResponse{
				Error: "Service temporarily unavailable, please try again",
				Code:  response.CodeStoreUnavailable,
			})
		}

		switch domain.Admit(domain.StateOf(profile), role) {
		case domain.AccessGranted:
			c.Locals(LocalProfile, profile)
			return c.Next()
		case domain.AccessAwaitingApproval:
			return deny(c, fiber.StatusForbidden, response.CodeUserPending, "Your account is awaiting approval")
		case domain.AccessBlocked:
			return deny(c, fiber.StatusForbidden, response.CodeUserSuspended, "Your account has been suspended")
		case domain.AccessForbidden:
			return deny(c, fiber.StatusForbidden, response.CodeForbidden, "You do not have access to this resource")
		default:
			return unauthenticated(c, "Please sign in")
		}
	}
}

func deny(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(response.ErrorResponse{Error: msg, Code: code})
}
