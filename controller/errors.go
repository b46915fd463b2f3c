package controller

import (
	"errors"

	"attendance_ms/dtos/response"
	"attendance_ms/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const genericAuthFailure = "authentication failed"

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable is checked in order; the first sentinel err wraps wins.
var errorTable = []errorMapping{
	{services.ErrUnauthenticated, fiber.StatusUnauthorized, response.CodeUnauthenticated, "Please sign in"},
	{services.ErrNoCredentialsEnrolled, fiber.StatusBadRequest, response.CodeNoCredentialsEnrolled, "No biometric credentials registered. Please register first."},
	{services.ErrChallengeExpiredOrMissing, fiber.StatusUnauthorized, response.CodeChallengeExpiredOrMissing, genericAuthFailure},
	{services.ErrVerificationFailed, fiber.StatusUnauthorized, response.CodeVerificationFailed, genericAuthFailure},
	{services.ErrCredentialNotFound, fiber.StatusUnauthorized, response.CodeCredentialNotFound, genericAuthFailure},
	{services.ErrCounterRegressed, fiber.StatusUnauthorized, response.CodeCounterRegressed, genericAuthFailure},
	{services.ErrSessionAlreadyOpen, fiber.StatusConflict, response.CodeSessionAlreadyOpen, "You are already checked in. Please check out first."},
	{services.ErrNoActiveSession, fiber.StatusNotFound, response.CodeNoActiveSession, "No active check-in found for today."},
	{services.ErrOutsideWorkLocation, fiber.StatusUnprocessableEntity, response.CodeOutsideWorkLocation, "You are not at a registered work location."},
	{services.ErrIdentityNotVerified, fiber.StatusForbidden, response.CodeIdentityNotVerified, "Please verify your identity before continuing."},
	{services.ErrInvalidLocation, fiber.StatusBadRequest, response.CodeInvalidRequest, "Location is invalid."},
	{services.ErrInvalidRange, fiber.StatusBadRequest, response.CodeInvalidRequest, "Date range is invalid."},
	{services.ErrStoreUnavailable, fiber.StatusServiceUnavailable, response.CodeStoreUnavailable, "Service temporarily unavailable, please try again"},
}

// writeError answers with the mapped status and code. The specific reason of a
// protocol failure is logged and never sent to the client.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		if services.IsProtocolError(err) {
			logger.Warn("ceremony rejected",
				zap.String("code", m.code),
				zap.String("reason", services.Reason(err)),
				zap.String("path", c.Path()))
		} else if m.status >= fiber.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(m.status).JSON(response.ErrorResponse{Error: m.message, Code: m.code})
	}

	logger.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{
		Error: "Internal server error",
		Code:  response.CodeInternal,
	})
}

func invalidRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
		Error: msg,
		Code:  response.CodeInvalidRequest,
	})
}
