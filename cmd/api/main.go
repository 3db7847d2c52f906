// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/activity"
	"github.com/carterperez-dev/taskboard/internal/admin"
	"github.com/carterperez-dev/taskboard/internal/auth"
	"github.com/carterperez-dev/taskboard/internal/calendar"
	"github.com/carterperez-dev/taskboard/internal/config"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/health"
	"github.com/carterperez-dev/taskboard/internal/jobs"
	"github.com/carterperez-dev/taskboard/internal/mailer"
	"github.com/carterperez-dev/taskboard/internal/middleware"
	"github.com/carterperez-dev/taskboard/internal/note"
	"github.com/carterperez-dev/taskboard/internal/planner"
	"github.com/carterperez-dev/taskboard/internal/project"
	"github.com/carterperez-dev/taskboard/internal/realtime"
	"github.com/carterperez-dev/taskboard/internal/report"
	"github.com/carterperez-dev/taskboard/internal/server"
	"github.com/carterperez-dev/taskboard/internal/task"
	"github.com/carterperez-dev/taskboard/internal/team"
	"github.com/carterperez-dev/taskboard/internal/user"
	"github.com/carterperez-dev/taskboard/migrations"
)

const (
	drainDelay           = 5 * time.Second
	tokenCleanupInterval = time.Hour
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

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logSink := setupLogger(cfg.Log)
	slog.SetDefault(logger)
	if logSink != nil {
		defer logSink.Close() //nolint:errcheck // flushed on exit
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := migrations.Apply(ctx, db.DB); err != nil {
		return err
	}
	logger.Info("schema applied")

	redis, err := core.NewRedis(ctx, cfg.Redis, cfg.App.Name)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	mail := mailer.New(cfg.Mail.From, mailer.LogTransport{Logger: logger}, logger)

	projectRepo := project.NewRepository(db.DB)
	teamRepo := team.NewRepository(db.DB)
	checker := access.NewChecker(projectRepo, teamRepo)

	hub := realtime.NewHub(logger)
	broker := realtime.NewBroker(
		hub,
		redis.Client,
		cfg.Realtime.ChannelPrefix,
		cfg.Realtime.BreakerTimeout,
		logger,
	)

	userSvc := user.NewService(user.NewRepository(db.DB), user.Quota{
		MaxProjects:          cfg.Quota.DefaultMaxProjects,
		MaxMembersPerProject: cfg.Quota.DefaultMaxMembers,
	})

	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		redis.Client,
		mail,
		auth.PasswordResetOptions{
			Expiry:   cfg.PasswordReset.Expiry,
			ResetURL: cfg.PasswordReset.ResetURL,
		},
	)

	activitySvc := activity.NewService(
		activity.NewRepository(db.DB),
		checker,
		cfg.Activity.RetentionWindow(),
		logger,
	)

	projectSvc := project.NewService(projectRepo, checker, userSvc, activitySvc)

	teamSvc := team.NewService(
		teamRepo,
		checker,
		projectRepo,
		userSvc,
		mail,
		activitySvc,
		team.InvitationOptions{
			Expiry:    cfg.Invitation.Expiry,
			AcceptURL: cfg.Invitation.AcceptURL,
		},
		logger,
	)

	taskSvc := task.NewService(task.NewRepository(db.DB), checker, activitySvc, broker)
	plannerSvc := planner.NewService(planner.NewRepository(db.DB))
	noteSvc := note.NewService(note.NewRepository(db.DB))
	calendarSvc := calendar.NewService(calendar.NewRepository(db.DB), checker, taskSvc, plannerSvc)
	reportSvc := report.NewService(report.NewRepository(db.DB), checker)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Pinger: db},
		health.Dependency{Name: "redis", Pinger: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		HubStats:   hub.Stats,
		Reports:    reportSvc,
	})

	scheduler := jobs.NewScheduler(logger, []jobs.Job{
		jobs.ActivityRetention(activitySvc, cfg.Activity.SweepInterval),
		jobs.TokenCleanup(authSvc, tokenCleanupInterval),
	}, jobs.WithRunOnStart())

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(telemetry.Tracer))
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin
	strictLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.AuthRateLimit.Requests,
			cfg.AuthRateLimit.Burst,
			cfg.AuthRateLimit.Window,
		),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: false,
	}).Handler

	authHandler := auth.NewHandler(authSvc)
	userHandler := user.NewHandler(userSvc, authSvc)
	activityHandler := activity.NewHandler(activitySvc)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, strictLimit)
		r.Post("/users", authHandler.Register)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)

		activityHandler.RegisterRoutes(r, authenticator)
		activityHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		project.NewHandler(projectSvc).RegisterRoutes(r, authenticator)
		team.NewHandler(teamSvc).RegisterRoutes(r, authenticator)
		task.NewHandler(taskSvc).RegisterRoutes(r, authenticator)
		report.NewHandler(reportSvc).RegisterRoutes(r, authenticator)
		planner.NewHandler(plannerSvc).RegisterRoutes(r, authenticator)
		note.NewHandler(noteSvc).RegisterRoutes(r, authenticator)
		calendar.NewHandler(calendarSvc).RegisterRoutes(r, authenticator)

		realtime.NewHandler(hub, checker, realtime.HandlerConfig{
			AllowedOrigins: cfg.Realtime.AllowedOrigins,
			SendBuffer:     cfg.Realtime.SendBuffer,
		}, logger).RegisterRoutes(r, authenticator)
	})

	background := server.NewBackground(ctx, logger)
	background.Go("realtime subscriber", broker.Run)
	background.Go("job scheduler", scheduler.Start)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if stopErr := background.Stop(context.Background()); stopErr != nil {
			logger.Error("background workers did not stop", "error", stopErr)
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := background.Stop(shutdownCtx); err != nil {
		logger.Error("background workers did not stop", "error", err)
	}
	hub.Shutdown()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
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

// setupLogger writes to stdout and, when log.file is set, to a rotating
// file as well. The returned closer is nil without a file sink.
func setupLogger(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var out io.Writer = os.Stdout
	var sink *lumberjack.Logger
	if cfg.File != "" {
		sink = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stdout, sink)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	if sink == nil {
		return slog.New(handler), nil
	}
	return slog.New(handler), sink
}
