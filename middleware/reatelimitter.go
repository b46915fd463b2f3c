package middleware

import (
	"time"

	"attendance_ms/dtos/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
)

// GlobalRateLimiter limits each client IP to max requests per window.
func GlobalRateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		LimitReached: limitReached,
	})
}

// UserRateLimiter keys on the authenticated user instead of the IP, so it
// must run after AuthMiddleware.
func UserRateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := UserID(c); id != uuid.Nil {
				return id.String()
			}
			return c.IP()
		},
		LimitReached: limitReached,
	})
}

func limitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(response.ErrorResponse{
		Error: "Too many requests, slow down.",
		Code:  response.CodeRateLimited,
	})
}
