package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medical-scheduling/config"
	deliveryHttp "medical-scheduling/internal/delivery/http"
	"medical-scheduling/internal/delivery/http/handler"
	"medical-scheduling/internal/delivery/http/middleware"
	"medical-scheduling/internal/infrastructure/cache"
	"medical-scheduling/internal/infrastructure/database"
	"medical-scheduling/internal/repository"
	"medical-scheduling/internal/service"
	"medical-scheduling/internal/usecase"
	"medical-scheduling/pkg/jwt"
	"medical-scheduling/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds all dependencies for the application
type App struct {
	Config        *config.Config
	Log           *logrus.Logger
	Store         *database.Store
	RedisClient   *redis.Client
	Server        *http.Server
	Reminders     *service.ReminderScheduler
	Notifications *service.NotificationDispatcher
}

// LoadConfig reads the configuration and sets up the logger
func LoadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg.App)
	log.Info("Configuration loaded successfully")
	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	// Initialize database
	store, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Store = store

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.initialize()

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func (app *App) initialize() {
	cfg := app.Config
	log := app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository()
	physicianRepo := repository.NewPhysicianRepository()
	patientRepo := repository.NewPatientRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	feedbackRepo := repository.NewFeedbackRepository()

	// Initialize services
	var notifier service.NotificationService
	if cfg.Notification.Stream != "" {
		notifier = service.NewRedisStreamNotifier(app.RedisClient, cfg.Notification)
	} else {
		notifier = service.NewLogNotifier(log)
	}
	app.Notifications = service.NewNotificationDispatcher(notifier, log)

	conflictChecker := service.NewConflictChecker(log, appointmentRepo)
	auditService := service.NewAuditService(log, auditLogRepo)
	linkGenerator := service.NewTelemedicineLinkGenerator(cfg.Booking.TelemedicineBaseURL)
	idempotency := service.NewRedisIdempotencyStore(app.RedisClient, cfg.Booking.IdempotencyTTL)
	revocations := service.NewRedisTokenRevocationStore(app.RedisClient)
	app.Reminders = service.NewReminderScheduler(app.Store, log, appointmentRepo, notifier, cfg.Reminder)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, revocations)
	appointmentUsecase := usecase.NewAppointmentUsecase(
		app.Store, log, appointmentRepo, physicianRepo, patientRepo,
		conflictChecker, linkGenerator, auditService, app.Notifications, idempotency, cfg.Booking,
	)
	physicianUsecase := usecase.NewPhysicianUsecase(app.Store, log, physicianRepo, appointmentRepo, conflictChecker, auditService, cfg.Search)
	feedbackUsecase := usecase.NewFeedbackUsecase(app.Store, log, feedbackRepo, appointmentRepo, patientRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(app.Store, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	physicianHandler := handler.NewPhysicianHandler(physicianUsecase, customValidator)
	feedbackHandler := handler.NewFeedbackHandler(feedbackUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)
	redisPing := handler.PingFunc(func(ctx context.Context) error {
		return app.RedisClient.Ping(ctx).Err()
	})
	healthHandler := handler.NewHealthHandler(log, map[string]handler.Pinger{
		"postgres": app.Store,
		"redis":    redisPing,
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, revocations, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler, appointmentHandler, physicianHandler, feedbackHandler, auditLogHandler, healthHandler,
		authMiddleware, corsMiddleware, loggingMiddleware,
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and, when enabled, the reminder scheduler,
// then blocks until SIGINT or SIGTERM.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if app.Config.Reminder.Enabled {
		app.Reminders.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.Log.Info("Shutting down server...")
	case err := <-errCh:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()
	app.Log.Info("Server shutdown complete")
	return runErr
}

// RunReminders runs the reminder job on its own. With once set it performs
// a single pass and returns.
func (app *App) RunReminders(once bool) error {
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		result, err := app.Reminders.RunOnce(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("reminder pass failed: %w", err)
		}
		app.Log.Infof("Reminder pass finished: appointments=%d, sent=%d, failed=%d", result.Appointments, result.Sent, result.Failed)
		return nil
	}

	app.Reminders.Start(ctx)
	<-ctx.Done()
	return nil
}

// Close stops background work and closes all connections (database, redis)
func (app *App) Close() {
	if app.Reminders != nil {
		app.Reminders.Stop()
	}
	if app.Notifications != nil {
		app.Notifications.Wait()
	}

	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			app.Log.Warnf("Failed to close database: %v", err)
		}
	}

	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Log.Warnf("Failed to close Redis: %v", err)
		}
	}
}

// Migrate applies pending migrations using only the database connection
func Migrate(cfg *config.Config, log *logrus.Logger) error {
	store, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	return database.Migrate(store, log)
}
