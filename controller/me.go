package controller

import (
	"attendance_ms/domain"
	"attendance_ms/dtos/response"
	"attendance_ms/middleware"
	"attendance_ms/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IMeController interface {
	Me(c *fiber.Ctx) error
}

type MeController struct {
	profiles services.IProfileService
	logger   *zap.Logger
}

func NewMeController(profiles services.IProfileService, logger *zap.Logger) IMeController {
	return &MeController{profiles: profiles, logger: logger}
}

// Me reports the caller's profile and state for every state, so pending and
// suspended users can be routed to the right screen.
func (mc *MeController) Me(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	profile, err := mc.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return writeError(c, mc.logger, err)
	}
	devices, err := mc.profiles.Devices(c.UserContext(), userID)
	if err != nil {
		return writeError(c, mc.logger, err)
	}

	state := domain.StateOf(profile)
	return c.Status(fiber.StatusOK).JSON(response.Me{
		Profile: profile,
		State:   domain.StateName(state),
		Access:  domain.Admit(state, "").String(),
		Devices: response.NewDevices(devices),
	})
}
