package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authapi/internal/authn"
	"authapi/internal/authn/adapter/codec"
	"authapi/internal/authn/adapter/httpapi"
	"authapi/internal/authn/adapter/inmem"
	"authapi/internal/authn/adapter/postgres"
	"authapi/internal/authn/middleware"
	"authapi/internal/domain"
	"authapi/internal/platform/config"
	"authapi/internal/platform/server"
	"authapi/internal/platform/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	// Logging
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	shutdown, err := telemetry.Setup(context.Background(), "authapi")
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	metrics, err := telemetry.NewAuthMetrics()
	if err != nil {
		slog.Error("metrics initialization failed", "error", err)
		os.Exit(1)
	}

	// Token codec, the only holder of the signing secret.
	tokenCodec, err := codec.New(codec.Config{
		Secret:   cfg.JWTSecret,
		TTL:      cfg.JWTTTL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}, time.Now)
	if err != nil {
		slog.Error("codec initialization failed", "error", err)
		os.Exit(1)
	}

	// User directory
	var directory authn.Directory
	switch cfg.DirectoryBackend {
	case "memory":
		directory = demoDirectory()
		slog.Info("using in-memory directory with demo data",
			"tenants", "acme, globex")
	default:
		pg, err := postgres.NewDirectory(ctx, cfg.PGDSN)
		if err != nil {
			slog.Error("postgres directory initialization failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		directory = pg
	}

	service := authn.NewService(directory, tokenCodec, logger, metrics)
	api := httpapi.NewHandler(logger, service, directory)

	// Assemble middleware chain
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	mux.Handle("/", middleware.Chain(
		api,
		middleware.Metrics(metrics),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recovery,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.MaxBodySize(cfg.MaxBodyBytes),
		middleware.Auth(tokenCodec, httpapi.PublicPaths(), metrics),
	))

	srv := server.New(cfg.Addr, mux)

	slog.Info("auth api starting",
		"addr", cfg.Addr,
		"issuer", cfg.JWTIssuer,
		"audience", cfg.JWTAudience,
		"token_ttl", cfg.JWTTTL,
		"directory_backend", cfg.DirectoryBackend,
	)

	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
	}

	if err := shutdown(context.Background()); err != nil {
		slog.Error("telemetry shutdown error", "error", err)
	}
}

// demoDirectory seeds two tenants with a handful of users so the API
// runs without a database. One email exists under both tenants to make
// the isolation behavior easy to demonstrate.
func demoDirectory() *inmem.Directory {
	acme := domain.Tenant{ID: "t-demo-0001", Name: "Acme Notes", Slug: "acme"}
	globex := domain.Tenant{ID: "t-demo-0002", Name: "Globex", Slug: "globex"}
	return inmem.NewDirectory(
		[]domain.Tenant{acme, globex},
		[]domain.User{
			{ID: "u-demo-0001", TenantID: acme.ID, Email: "ada@acme.test", Role: domain.RoleAdmin},
			{ID: "u-demo-0002", TenantID: acme.ID, Email: "bo@acme.test", Role: domain.RoleEditor},
			{ID: "u-demo-0003", TenantID: globex.ID, Email: "ivan@globex.test", Role: domain.RoleAdmin},
			{ID: "u-demo-0004", TenantID: acme.ID, Email: "lee@contractor.test", Role: domain.RoleEditor},
			{ID: "u-demo-0005", TenantID: globex.ID, Email: "lee@contractor.test", Role: domain.RoleAdmin},
		},
	)
}
