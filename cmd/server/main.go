// Command server runs the respondent login service.
//
// Subcommands:
//
//	serve    start the HTTP server (default)
//	migrate  apply database migrations and exit
//	seed     apply migrations, provision demo accounts and exit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/loginsvc/internal/auth"
	"github.com/dmitrymomot/loginsvc/internal/config"
	"github.com/dmitrymomot/loginsvc/internal/handler"
	"github.com/dmitrymomot/loginsvc/internal/httpserver"
	"github.com/dmitrymomot/loginsvc/internal/jwt"
	"github.com/dmitrymomot/loginsvc/internal/logger"
	"github.com/dmitrymomot/loginsvc/internal/metrics"
	"github.com/dmitrymomot/loginsvc/internal/password"
	"github.com/dmitrymomot/loginsvc/internal/pg"
	"github.com/dmitrymomot/loginsvc/internal/seed"
	"github.com/dmitrymomot/loginsvc/internal/user"
)

// appConfig holds the service-level settings. The signing secret is required
// and never logged; infrastructure sections load their own config types.
type appConfig struct {
	ServiceName       string        `env:"SERVICE_NAME" envDefault:"loginsvc"`
	JWTSecret         string        `env:"JWT_SECRET,required"`
	LogFormat         logger.Format `env:"LOG_FORMAT" envDefault:"json"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithFormat(cfg.LogFormat),
		logger.WithAttr(slog.String("service", cfg.ServiceName)),
	)
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}

	ctx := context.Background()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	log.Info("database connection established")

	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "serve":
		return serve(ctx, cfg, pool, log)
	case "migrate":
		return pg.Migrate(ctx, pool, pgCfg, log)
	case "seed":
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return err
		}
		storage := user.NewPostgresStorage(pool)
		return seed.Run(ctx, storage, password.New(), log)
	default:
		return fmt.Errorf("unknown command %q (expected serve, migrate or seed)", cmd)
	}
}

func serve(ctx context.Context, cfg appConfig, pool *pgxpool.Pool, log *slog.Logger) error {
	codec, err := jwt.NewFromString(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("invalid signing secret: %w", err)
	}

	storage := user.NewPostgresStorage(pool)
	hasher := password.New()
	authService := auth.New(storage, hasher, codec, auth.WithLogger(log))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := handler.NewRouter(handler.Deps{
		Auth:              authService,
		Logger:            log,
		Metrics:           collector,
		Gatherer:          registry,
		HealthCheck:       pg.Healthcheck(pool),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	})

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	server := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return server.Run(ctx, router)
}
