package controller

import (
	"time"

	"attendance_ms/domain"
	"attendance_ms/dtos/request"
	"attendance_ms/dtos/response"
	"attendance_ms/middleware"
	"attendance_ms/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type IAttendanceController interface {
	Open(c *fiber.Ctx) error
	CheckIn(c *fiber.Ctx) error
	CheckOut(c *fiber.Ctx) error
	Today(c *fiber.Ctx) error
	History(c *fiber.Ctx) error
}

type AttendanceController struct {
	attendance services.IAttendanceService
	logger     *zap.Logger
}

func NewAttendanceController(attendance services.IAttendanceService, logger *zap.Logger) IAttendanceController {
	return &AttendanceController{attendance: attendance, logger: logger}
}

func (ac *AttendanceController) Open(c *fiber.Ctx) error {
	rec, err := ac.attendance.OpenSession(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, ac.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.NewAttendanceRecord(rec, ac.attendance.Now()))
}

func (ac *AttendanceController) CheckIn(c *fiber.Ctx) error {
	req := middleware.Body[request.CheckInRequest](c)
	loc := domain.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Address:   req.Address,
	}

	rec, err := ac.attendance.CheckIn(c.UserContext(), middleware.UserID(c), loc, req.VerificationMethod)
	if err != nil {
		return writeError(c, ac.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(response.NewAttendanceRecord(rec, ac.attendance.Now()))
}

func (ac *AttendanceController) CheckOut(c *fiber.Ctx) error {
	req := middleware.Body[request.CheckOutRequest](c)
	loc := domain.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Address:   req.Address,
	}

	rec, err := ac.attendance.CheckOut(c.UserContext(), middleware.UserID(c), req.RecordID, loc, req.Notes)
	if err != nil {
		return writeError(c, ac.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.NewAttendanceRecord(rec, ac.attendance.Now()))
}

func (ac *AttendanceController) Today(c *fiber.Ctx) error {
	recs, err := ac.attendance.Today(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, ac.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.NewAttendanceRecords(recs, ac.attendance.Now()))
}

// History leaves omitted bounds zero; the service resolves them against the
// attendance calendar.
func (ac *AttendanceController) History(c *fiber.Ctx) error {
	now := ac.attendance.Now()
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return invalidRequest(c, "to must be a date formatted YYYY-MM-DD")
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return invalidRequest(c, "from must be a date formatted YYYY-MM-DD")
	}

	recs, err := ac.attendance.History(c.UserContext(), middleware.UserID(c), from, to)
	if err != nil {
		return writeError(c, ac.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.NewAttendanceRecords(recs, now))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
