// Package main is the entrypoint for the Threadline provisioning API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/threadline/threadline/internal/cache"
	"github.com/threadline/threadline/internal/config"
	"github.com/threadline/threadline/internal/creationlink"
	"github.com/threadline/threadline/internal/handler"
	"github.com/threadline/threadline/internal/metrics"
	"github.com/threadline/threadline/internal/middleware"
	"github.com/threadline/threadline/internal/repository"
	"github.com/threadline/threadline/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	metricsRecorder := metrics.NewInMemory()
	linkService := creationlink.NewService(repo, cfg.BaseURL, cfg.CreationLinkValidity(), metricsRecorder)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	realmHandler := handler.NewRealmHandler(linkService, logger, cfg.OpenRealmCreation)
	realmAPIHandler := handler.NewRealmAPIHandler(repo, cacheClient, metricsRecorder, logger)
	linkAPIHandler := handler.NewCreationLinkHandler(linkService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	r := setupRouter(routerDeps{
		base:      h,
		health:    healthHandler,
		realm:     realmHandler,
		realmAPI:  realmAPIHandler,
		links:     linkAPIHandler,
		metrics:   metricsHandler,
		repo:      repo,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"open_realm_creation", cfg.OpenRealmCreation,
		"creation_link_validity_days", cfg.CreationLinkValidityDays,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base     *handler.Handler
	health   *handler.HealthHandler
	realm    *handler.RealmHandler
	realmAPI *handler.RealmAPIHandler
	links    *handler.CreationLinkHandler
	metrics  *handler.MetricsHandler
	repo     *repository.Repository
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = deps.cfg.IsDevelopment()
	securityCfg.MaxRequestBodySize = deps.cfg.MaxRequestBodySize
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.MaxBodySize(securityCfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:          deps.logger,
		Cache:           deps.cache,
		CreationEnabled: deps.cfg.RateLimitCreationEnabled,
		CreationRPS:     deps.cfg.RateLimitCreationRPS,
		CreationBurst:   deps.cfg.RateLimitCreationBurst,
	}

	// Admin API (requires an admin key)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(authCfg))

		r.Post("/creation_links", deps.links.Create)

		r.Route("/realms", func(r chi.Router) {
			r.Get("/", deps.realmAPI.List)
			r.Post("/", deps.realmAPI.Create)
			r.Get("/{string_id}", deps.realmAPI.Get)
			r.Delete("/{string_id}", deps.realmAPI.Deactivate)
		})
	})

	// Public realm-creation flow with IP-based rate limiting
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitCreation(rateLimitCfg))

		r.Get("/create_realm/{key}", deps.realm.ShowCreateForm)
		r.Post("/create_realm/{key}", deps.realm.SubmitCreateForm)
		r.Get("/create_realm", deps.realm.OpenCreateForm)
		r.Post("/create_realm", deps.realm.OpenCreate)
	})

	r.Get("/accounts/send_confirm/{email}", deps.realm.SendConfirm)

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
