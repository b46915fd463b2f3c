package controller

import (
	"attendance_ms/dtos/response"
	"attendance_ms/middleware"
	"attendance_ms/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IWebAuthnController interface {
	RegisterChallenge(c *fiber.Ctx) error
	RegisterVerify(c *fiber.Ctx) error
	AuthenticateChallenge(c *fiber.Ctx) error
	AuthenticateVerify(c *fiber.Ctx) error
}

type WebAuthnController struct {
	ceremonies services.ICeremonyService
	logger     *zap.Logger
}

func NewWebAuthnController(ceremonies services.ICeremonyService, logger *zap.Logger) IWebAuthnController {
	return &WebAuthnController{ceremonies: ceremonies, logger: logger}
}

// RegisterChallenge returns the publicKey creation options for
// navigator.credentials.create.
func (wc *WebAuthnController) RegisterChallenge(c *fiber.Ctx) error {
	options, err := wc.ceremonies.BeginRegistration(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, wc.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(options)
}

func (wc *WebAuthnController) RegisterVerify(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return invalidRequest(c, "attestation response is required")
	}
	if err := wc.ceremonies.FinishRegistration(c.UserContext(), middleware.UserID(c), c.Body()); err != nil {
		return writeError(c, wc.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.VerifiedResponse{Verified: true})
}

func (wc *WebAuthnController) AuthenticateChallenge(c *fiber.Ctx) error {
	options, err := wc.ceremonies.BeginAuthentication(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, wc.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(options)
}

func (wc *WebAuthnController) AuthenticateVerify(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return invalidRequest(c, "assertion response is required")
	}
	if err := wc.ceremonies.FinishAuthentication(c.UserContext(), middleware.UserID(c), c.Body()); err != nil {
		return writeError(c, wc.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.VerifiedResponse{Verified: true})
}
