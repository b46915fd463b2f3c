package middleware

import (
	"attendance_ms/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// CORS takes a comma separated origin allowlist.
func CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "POST, GET, OPTIONS",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	})
}

// RequestID honours an incoming X-Request-ID and otherwise mints one.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Generator: util.NewRequestID,
	})
}
