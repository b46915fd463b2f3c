package main

import (
	"errors"
	"time"

	"attendance_ms/config"
	"attendance_ms/controller"
	"attendance_ms/dtos/request"
	"attendance_ms/dtos/response"
	"attendance_ms/middleware"
	"attendance_ms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

type Server struct {
	WebAuthnController   controller.IWebAuthnController
	AttendanceController controller.IAttendanceController
	MeController         controller.IMeController
	JWT                  services.IJWTService
	Profiles             middleware.ProfileLoader
	Metrics              *services.Metrics
	Gatherer             prometheus.Gatherer
	Logger               *zap.Logger
}

// NOTE: Server Constructor
func NewServer(
	WebAuthnController controller.IWebAuthnController,
	AttendanceController controller.IAttendanceController,
	MeController controller.IMeController,
	JWT services.IJWTService,
	Profiles middleware.ProfileLoader,
	Metrics *services.Metrics,
	Gatherer prometheus.Gatherer,
	Logger *zap.Logger,
) *Server {
	return &Server{
		WebAuthnController:   WebAuthnController,
		AttendanceController: AttendanceController,
		MeController:         MeController,
		JWT:                  JWT,
		Profiles:             Profiles,
		Metrics:              Metrics,
		Gatherer:             Gatherer,
		Logger:               Logger,
	}
}

// NOTE: Start Fiber Server
func (s *Server) Start() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      config.Conf.Application.DisplayName,
		ErrorHandler: s.errorHandler,
	})

	var latency *prometheus.HistogramVec
	if s.Metrics != nil {
		latency = s.Metrics.HTTPRequests
	}
	rate := config.Conf.Application.RateLimit
	window := time.Duration(rate.WindowSeconds) * time.Second

	app.Use(middleware.RecoveryMiddleware(s.Logger))
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware(s.Logger, latency))
	app.Use(middleware.CORS(config.Conf.Application.Cors.AllowOrigins))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metrics(c.Context())
		return nil
	})

	// NOTE: Define API paths (context path and grouping by version)
	contextPath := app.Group(config.Conf.Application.Server.ContextPath)
	apiVersion := contextPath.Group(config.Conf.Application.Server.ApiVersion,
		middleware.GlobalRateLimiter(rate.Max, window),
		middleware.AuthMiddleware(s.JWT),
	)

	apiVersion.Get("/me", s.MeController.Me)

	active := middleware.RequireAccess(s.Profiles, "", s.Logger)

	webauthnGroup := apiVersion.Group("/webauthn", active, middleware.UserRateLimiter(rate.Max, window))
	webauthnGroup.Post("/register-challenge", s.WebAuthnController.RegisterChallenge)
	webauthnGroup.Post("/register-verify", s.WebAuthnController.RegisterVerify)
	webauthnGroup.Post("/authenticate-challenge", s.WebAuthnController.AuthenticateChallenge)
	webauthnGroup.Post("/authenticate-verify", s.WebAuthnController.AuthenticateVerify)

	attendanceGroup := apiVersion.Group("/attendance", active)
	attendanceGroup.Get("/open", s.AttendanceController.Open)
	attendanceGroup.Post("/check-in", middleware.ValidateBody[request.CheckInRequest](), s.AttendanceController.CheckIn)
	attendanceGroup.Post("/check-out", middleware.ValidateBody[request.CheckOutRequest](), s.AttendanceController.CheckOut)
	attendanceGroup.Get("/today", s.AttendanceController.Today)
	attendanceGroup.Get("/history", s.AttendanceController.History)

	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.Logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(code).JSON(response.ErrorResponse{Error: "Internal server error", Code: response.CodeInternal})
	}
	return c.Status(code).JSON(response.ErrorResponse{Error: err.Error(), Code: response.CodeInvalidRequest})
}
