package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance_ms/config"
	"attendance_ms/controller"
	"attendance_ms/repository/command_repository"
	"attendance_ms/repository/query_repository"
	"attendance_ms/services"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	//DB
	dbConnection *gorm.DB

	//Redis Client
	redisClient *redis.Client

	//WebAuthn Conf
	webAuthn *webauthn.WebAuthn

	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *services.Metrics
	events   *services.KafkaEventPublisher

	// Repository
	profileQuery      query_repository.IProfileQueryRepository
	credentialQuery   query_repository.ICredentialQueryRepository
	attendanceQuery   query_repository.IAttendanceQueryRepository
	workLocationQuery query_repository.IWorkLocationQueryRepository
	profileCommand    command_repository.IProfileCommandRepository
	credentialCommand command_repository.ICredentialCommandRepository
	attendanceCommand command_repository.IAttendanceCommandRepository

	// Service
	jwtService        services.IJWTService
	challengeStore    services.IChallengeStore
	profileService    services.IProfileService
	ceremonyService   services.ICeremonyService
	attendanceService services.IAttendanceService

	// Controller
	webAuthnController   controller.IWebAuthnController
	attendanceController controller.IAttendanceController
	meController         controller.IMeController
}

// NOTE: Service Start
func (s *service) Start() {
	s.logger = config.InitLogger(config.Conf.Application.Logging.Level)

	log.Info("Opening database connection...")
	s.dbConnection = config.OpenDatabaseConnection(config.Conf.Application.Datasource.PrimaryURL)
	config.Migrate(config.Conf.Application.Datasource.PrimaryURL)

	log.Info("Opening redis connection...")
	s.redisClient = config.ConnectToRedis(config.Conf.Application.Redis)

	log.Info("WebAuthn config")
	s.webAuthn = config.InitWebAuthn()

	log.Info("Kafka producer config")
	producer, err := config.NewKafkaProducer(config.Conf.Application.Kafka)
	if err != nil {
		log.Panic("failed to create kafka producer: ", err)
	}
	if producer == nil {
		log.Warn("no kafka brokers configured, events will only be logged")
	}
	s.events = services.NewKafkaEventPublisher(producer, config.Conf.Application.Kafka.Topic, s.logger)

	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.metrics = services.NewMetrics()
	if err := s.metrics.Register(s.registry); err != nil {
		log.Panic("failed to register metrics: ", err)
	}

	// NOTE: Dependency Injections
	s.DependencyInjection()

	// NOTE: Start Fiber server...
	app := NewServer(
		s.webAuthnController,
		s.attendanceController,
		s.meController,
		s.jwtService,
		s.profileService,
		s.metrics,
		s.registry,
		s.logger,
	).Start()

	log.Info("Server starting..")
	// NOTE: Server start with goroutine
	go func() {
		if err := app.Listen(config.Conf.Application.Server.Port); err != nil {
			log.Fatal("Server failed to start")
		}
	}()
	// NOTE: Keep OS signals for graceful shutdown
	s.gracefulShutdown(app)
}

// NOTE: Depency Injection Operation
func (s *service) DependencyInjection() {
	app := config.Conf.Application

	tz, err := app.Attendance.Location()
	if err != nil {
		log.Panic("invalid attendance timezone: ", err)
	}
	clock := clockwork.NewRealClock()

	s.jwtService = services.NewJWTService([]byte(app.Security.Secret), app.Security.Issuer)

	// NOTE: Repositories Injections
	s.profileQuery = query_repository.NewProfileQueryRepository()
	s.credentialQuery = query_repository.NewCredentialQueryRepository()
	s.attendanceQuery = query_repository.NewAttendanceQueryRepository()
	s.workLocationQuery = query_repository.NewWorkLocationQueryRepository()
	s.profileCommand = command_repository.NewProfileCommandRepository()
	s.credentialCommand = command_repository.NewCredentialCommandRepository()
	s.attendanceCommand = command_repository.NewAttendanceCommandRepository()

	// NOTE: Services Injections
	s.challengeStore = services.NewRedisChallengeStore(s.redisClient, time.Duration(app.WebAuthn.ChallengeTTLSeconds)*time.Second)
	s.profileService = services.NewProfileService(s.dbConnection, s.profileQuery, s.credentialQuery)
	s.ceremonyService = services.NewCeremonyService(services.CeremonyDeps{
		WebAuthn:           s.webAuthn,
		DB:                 s.dbConnection,
		ProfileQuery:       s.profileQuery,
		ProfileCommand:     s.profileCommand,
		CredentialCommand:  s.credentialCommand,
		Challenges:         s.challengeStore,
		Events:             s.events,
		Metrics:            s.metrics,
		Clock:              clock,
		Logger:             s.logger.Named("ceremony"),
		VerificationWindow: time.Duration(app.Attendance.VerificationWindowSeconds) * time.Second,
	})
	s.attendanceService = services.NewAttendanceService(services.AttendanceDeps{
		DB:                s.dbConnection,
		AttendanceQuery:   s.attendanceQuery,
		AttendanceCommand: s.attendanceCommand,
		WorkLocations:     s.workLocationQuery,
		Challenges:        s.challengeStore,
		Events:            s.events,
		Metrics:           s.metrics,
		Clock:             clock,
		Logger:            s.logger.Named("attendance"),
		Policy: services.AttendancePolicy{
			Location:         tz,
			RequireBiometric: app.Attendance.RequireBiometric,
			GeofenceEnabled:  app.Attendance.GeofenceEnabled,
		},
	})

	// NOTE: Controllers Injections
	s.webAuthnController = controller.NewWebAuthnController(s.ceremonyService, s.logger)
	s.attendanceController = controller.NewAttendanceController(s.attendanceService, s.logger)
	s.meController = controller.NewMeController(s.profileService, s.logger)
}

// NOTE: Graceful shutdown operation
func (s *service) gracefulShutdown(app *fiber.App) {

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// NOTE:Server Shutdown when keep signal
	<-sigChan
	log.Info("Shutting down server...")
	// NOTE: Creating context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// NOTE: Shutdown Fiber server
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("error while shutting down app", err)
	}

	if err := s.events.Close(); err != nil {
		log.Error("error while closing kafka producer", err)
	}
	if err := s.redisClient.Close(); err != nil {
		log.Error("error while closing redis client", err)
	}

	// NOTE: Shutdown Database connection
	done := make(chan bool)
	go func() {
		config.CloseDatabaseConnection(s.dbConnection)
		done <- true
	}()

	select {
	case <-ctx.Done():
		log.Error("timeout while shutting down database", ctx.Err())
	case <-done:
		log.Info("database is gracefully shutdown")
	}
	_ = s.logger.Sync()
}
