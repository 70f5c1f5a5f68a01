package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clinic-management/config"
	deliveryHttp "clinic-management/internal/delivery/http"
	"clinic-management/internal/delivery/http/handler"
	"clinic-management/internal/delivery/http/middleware"
	"clinic-management/internal/infrastructure/cache"
	"clinic-management/internal/infrastructure/database"
	"clinic-management/internal/infrastructure/metrics"
	"clinic-management/internal/repository"
	"clinic-management/internal/service"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/jwt"
	"clinic-management/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const metricsNamespace = "clinic"

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	notifier *service.NotificationService
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app, err := NewWithDatabase()
	if err != nil {
		return nil, err
	}

	if err := app.ConnectRedis(); err != nil {
		app.Close()
		return nil, err
	}

	// Initialize all layers
	app.initializeServer()

	return app, nil
}

// NewWithDatabase loads configuration and opens the database only.
// Used by the maintenance commands.
func NewWithDatabase() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.Log.Level)
	app.Log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, app.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	return app, nil
}

// ConnectRedis opens the Redis client
func (app *App) ConnectRedis() error {
	redisClient, err := cache.NewRedisClient(app.Config.Redis, app.Log)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	return nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() {
	cfg, db, redisClient, log := app.Config, app.DB, app.RedisClient, app.Log

	// Initialize shared services
	jwtService := jwt.NewJWTService(cfg.JWT, cfg.App.Name)
	customValidator := validator.NewValidator()
	collector := metrics.NewCollector(metricsNamespace)
	gate := service.NewAccessGate()
	tokenStore := service.NewTokenStore(redisClient)

	policy := usecase.BookingPolicy{
		MaxPendingPerPatient: cfg.Booking.MaxPendingPerPatient,
		Location:             cfg.Location(),
	}

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	patientProfileRepo := repository.NewPatientProfileRepository(db)
	specializationRepo := repository.NewSpecializationRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	medicationRepo := repository.NewMedicationRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(log, auditLogRepo)
	aclCache := service.NewPermissionCache(redisClient, roleRepo, log)

	app.notifier = service.NewNotificationService(
		appointmentRepo,
		service.NewRedisStreamSender(redisClient, cfg.Notification.Stream),
		collector,
		log,
		service.NotificationOptions{
			BufferSize:  cfg.Notification.BufferSize,
			FromAddress: cfg.Notification.FromAddress,
			ClinicName:  cfg.App.Name,
			AppURL:      cfg.App.URL,
		},
	)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, transactor, userRepo, roleRepo, patientProfileRepo, auditService, jwtService, tokenStore)
	appointmentUsecase := usecase.NewAppointmentUsecase(log, transactor, appointmentRepo, userRepo, specializationRepo,
		auditService, app.notifier, gate, customValidator, collector, policy)
	lifecycleUsecase := usecase.NewAppointmentLifecycleUsecase(log, transactor, appointmentRepo, auditService, gate, customValidator, collector, policy)
	prescriptionUsecase := usecase.NewPrescriptionUsecase(log, transactor, prescriptionRepo, appointmentRepo, medicationRepo,
		auditService, gate, customValidator, collector, policy)
	medicationUsecase := usecase.NewMedicationUsecase(log, transactor, medicationRepo, auditService, gate, customValidator)
	dashboardUsecase := usecase.NewDashboardUsecase(log, appointmentRepo, prescriptionRepo, medicationRepo, gate, policy)
	roleUsecase := usecase.NewRoleUsecase(log, transactor, roleRepo, userRepo, auditService, aclCache, gate)
	specializationUsecase := usecase.NewSpecializationUsecase(log, transactor, specializationRepo, auditService, gate)
	staffUsecase := usecase.NewStaffUsecase(log, transactor, userRepo, roleRepo, specializationRepo, auditService, aclCache, tokenStore, gate)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo, gate)
	patientAdminUsecase := usecase.NewPatientAdminUsecase(log, transactor, userRepo, roleRepo, patientProfileRepo, appointmentRepo,
		auditService, aclCache, tokenStore, gate, customValidator, policy)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:           handler.NewAuthHandler(authUsecase, customValidator, jwtService),
		Patient:        handler.NewPatientHandler(appointmentUsecase, prescriptionUsecase),
		Doctor:         handler.NewDoctorHandler(lifecycleUsecase, prescriptionUsecase, staffUsecase),
		Billing:        handler.NewBillingHandler(lifecycleUsecase, prescriptionUsecase, dashboardUsecase),
		Medication:     handler.NewMedicationHandler(medicationUsecase, dashboardUsecase),
		Role:           handler.NewRoleHandler(roleUsecase, customValidator),
		Staff:          handler.NewStaffHandler(staffUsecase, customValidator),
		Specialization: handler.NewSpecializationHandler(specializationUsecase, customValidator),
		AuditLog:       handler.NewAuditLogHandler(auditLogUsecase),
		PatientAdmin:   handler.NewPatientAdminHandler(patientAdminUsecase, customValidator),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, aclCache, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins...)
	metricsMiddleware := middleware.NewMetricsMiddleware(collector, log)

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware, metricsMiddleware, collector.Handler())
	httpRouter := router.Setup()

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close drains the notification queue, then closes database and Redis
func (app *App) Close() {
	if app.notifier != nil {
		app.notifier.Shutdown()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
