// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Deeazer/company-crm/internal/auth"
	"github.com/Deeazer/company-crm/internal/config"
	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/dashboard"
	"github.com/Deeazer/company-crm/internal/document"
	"github.com/Deeazer/company-crm/internal/health"
	"github.com/Deeazer/company-crm/internal/mail"
	"github.com/Deeazer/company-crm/internal/middleware"
	"github.com/Deeazer/company-crm/internal/migrations"
	"github.com/Deeazer/company-crm/internal/project"
	"github.com/Deeazer/company-crm/internal/server"
	"github.com/Deeazer/company-crm/internal/storage"
	"github.com/Deeazer/company-crm/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("document storage ready", "driver", cfg.Storage.Driver)

	hasher, err := core.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "HS256",
		"issuer", cfg.JWT.Issuer,
		"expires_in", cfg.JWT.AccessTokenExpire,
	)

	mailer := mail.NewSMTPMailer(cfg.Mail)
	if cfg.Mail.Host == "" {
		logger.Warn("smtp host not set, password reset mail will fail")
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, hasher)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(
		userSvc,
		jwtManager,
		auth.NewRedisDenylist(redis.Client),
		auth.ServiceConfig{
			AllowRoleOnRegister: cfg.Auth.AllowRoleOnRegister,
			DenylistFailOpen:    cfg.Auth.DenylistFailOpen,
		},
	)
	resetFlow := auth.NewResetFlow(userSvc, mailer, auth.ResetConfig{
		TokenTTL:  cfg.Auth.ResetTokenExpire,
		ClientURL: cfg.Auth.ClientURL,
	})
	authHandler := auth.NewHandler(authSvc, resetFlow)

	projectSvc := project.NewService(project.NewRepository(db.DB))
	projectHandler := project.NewHandler(projectSvc)

	documentSvc := document.NewService(
		document.NewRepository(db.DB),
		blobs,
		projectSvc,
		cfg.Upload.MaxSize,
	)
	documentHandler, err := document.NewHandler(documentSvc)
	if err != nil {
		return err
	}

	dashboardHandler := dashboard.NewHandler(dashboard.NewService(
		dashboard.NewRepository(db.DB),
		core.NewJSONCache(redis.Client),
		cfg.Dashboard.CacheTTL,
	))

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "storage", Checker: blobs},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:      middleware.LimitFromConfig(cfg.RateLimit),
			FailOpen:   true,
			BypassFunc: middleware.BypassProbes,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(authSvc)
	strict := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.LimitFromConfig(cfg.AuthRateLimit),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
	}).Handler

	authHandler.RegisterRoutes(router, authenticator, strict)
	userHandler.RegisterRoutes(router, authenticator)
	projectHandler.RegisterRoutes(router, authenticator)
	documentHandler.RegisterRoutes(router, authenticator)
	dashboardHandler.RegisterRoutes(router, authenticator)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
