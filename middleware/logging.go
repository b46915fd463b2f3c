package middleware

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Status messages
var statusMessages = map[int]string{
	200: "Ok",
	201: "Created",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	409: "Conflict",
	422: "Unprocessable Entity",
	429: "Too many requests",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

// Map HTTP status codes to zap log levels
var statusToLevel = map[int]zapcore.Level{
	200: zap.InfoLevel,
	201: zap.InfoLevel,
	400: zap.WarnLevel,
	401: zap.WarnLevel,
	403: zap.WarnLevel,
	404: zap.InfoLevel,
	409: zap.InfoLevel,
	422: zap.WarnLevel,
	429: zap.InfoLevel,
	500: zap.ErrorLevel,
	503: zap.ErrorLevel,
}

// LoggingMiddleware logs one line per request and, when latency is non-nil,
// observes it labelled by the matched route rather than the raw path.
func LoggingMiddleware(logger *zap.Logger, latency *prometheus.HistogramVec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Let the app's error handler write the response before logging it.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}
		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		responseErr := struct {
			ResponseErr string `json:"error"`
			Code        string `json:"code"`
		}{}
		if statusCode >= fiber.StatusBadRequest {
			_ = json.Unmarshal(c.Response().Body(), &responseErr)
		}

		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("err", responseErr.ResponseErr),
			zap.String("code", responseErr.Code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", statusCode),
			zap.Duration("duration", duration),
		}

		if latency != nil {
			latency.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(statusCode)).Observe(duration.Seconds())
		}

		level, ok := statusToLevel[statusCode]
		if !ok {
			level = zap.InfoLevel
		}

		message, ok := statusMessages[statusCode]
		if !ok {
			message = fmt.Sprintf("Unknown status %d", statusCode)
		}

		if ce := logger.Check(level, message); ce != nil {
			ce.Write(fields...)
		}
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return string(c.Response().Header.Peek(fiber.HeaderXRequestID))
}
