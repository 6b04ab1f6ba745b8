package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/config"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	appHTTP "github.com/cmlabs-hris/timesheet-go/internal/handler/http"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/email"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timesheet-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/timesheet-go/internal/service/auth"
	notificationService "github.com/cmlabs-hris/timesheet-go/internal/service/notification"
	projectService "github.com/cmlabs-hris/timesheet-go/internal/service/project"
	timesheetService "github.com/cmlabs-hris/timesheet-go/internal/service/timesheet"
	"github.com/cmlabs-hris/timesheet-go/migrations"
	"github.com/go-chi/httplog/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

const version = "v1.0.0"

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		})
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timesheet"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	)
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(ctx, migrations.FS)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("Migrations applied", "count", applied)
	}

	// Repositories
	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	entryRepo := postgresql.NewEntryRepository(db)
	projectRepo := postgresql.NewProjectRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email: %w", err)
	}

	hub := sse.NewHub(16)
	defer hub.Close()

	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, emailService, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
		FrontendURL:   cfg.App.FrontendURL,
	})
	defer notifSvc.Stop()

	authService := serviceAuth.NewAuthService(tx, userRepo, JWTService, JWTRepository)
	projectSvc := projectService.NewProjectService(projectRepo)
	entrySvc := timesheetService.NewEntryService(
		tx,
		entryRepo,
		projectRepo,
		notifSvc,
		timesheet.NewOptions(cfg.Timesheet.TimeCategories, cfg.Timesheet.ResourcePlans),
	)

	// Draft reminder
	if cfg.Reminder.Schedule != "" {
		loc, err := time.LoadLocation(cfg.Reminder.Timezone)
		if err != nil {
			return fmt.Errorf("load reminder timezone: %w", err)
		}
		scheduler := cron.NewScheduler(loc)
		err = scheduler.AddJob(cron.Job{
			Name:    "timesheet-draft-reminder",
			Spec:    cfg.Reminder.Schedule,
			Timeout: 5 * time.Minute,
			Fn:      cron.DraftReminderJob(entrySvc, postgresql.NewAdvisoryLocker(db), func() time.Time { return time.Now().In(loc) }),
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
		LogLevel:       slog.LevelInfo,
	}, JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authService),
		Timesheet:    appHTTP.NewTimesheetHandler(entrySvc),
		Project:      appHTTP.NewProjectHandler(projectSvc),
		Notification: appHTTP.NewNotificationHandler(notifSvc, JWTService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	// SSE streams end when the hub closes; Shutdown would otherwise wait on them.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
