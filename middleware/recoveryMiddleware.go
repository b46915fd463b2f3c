package middleware

import (
	"runtime/debug"

	"attendance_ms/dtos/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func RecoveryMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("caught panic",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.ByteString("stack", debug.Stack()))

				err = c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{
					Error: "Internal server error",
					Code:  response.CodeInternal,
				})
			}
		}()
		return c.Next()
	}
}
