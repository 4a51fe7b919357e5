// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/database"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/handler"
	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/Shivanand-hulikatti/campus-events/internal/mongostore"
	"github.com/Shivanand-hulikatti/campus-events/internal/regcount"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
	"github.com/Shivanand-hulikatti/campus-events/internal/session"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.PrettyLogs()})

	if err := run(cfg); err != nil {
		logger.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// ── 1. Open the gateway backend ──────────────────────────────────────
	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()
	logger.Info().Str("driver", cfg.Gateway.Driver).Msg("gateway ready")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	gw := gateway.New(backend, gateway.Collections{
		Users:    cfg.Gateway.UsersCollection,
		Events:   cfg.Gateway.EventsCollection,
		Bookings: cfg.Gateway.BookingsCollection,
		Scores:   cfg.Gateway.ScoresCollection,
		Videos:   cfg.Gateway.VideosCollection,
		Files:    cfg.Gateway.FilesBucket,
	})
	counts := regcount.New(gw.Documents, gw.Collections.Bookings,
		regcount.WithParallelism(cfg.Gateway.RefreshParallelism),
		regcount.WithLogger(logger.With("regcount")),
	)
	store := session.New(gw, counts, logger.With("session"))
	svc := service.New(service.Deps{
		Gateway:     gw,
		Session:     store,
		Counts:      counts,
		Log:         logger.With("service"),
		LatestLimit: cfg.Gateway.LatestEventsLimit,
	})
	h := handler.New(svc, logger.With("http"))

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: h.Router(handler.RouterConfig{
			CORSOrigins: cfg.Server.CORSOrigins,
			AuthRPS:     cfg.Server.RateLimit.RPS,
			AuthBurst:   cfg.Server.RateLimit.Burst,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	svc.Events.Drain()
	logger.Info().Msg("server stopped")
	return nil
}

// openBackend connects the configured gateway driver and returns a func that
// releases it.
func openBackend(ctx context.Context, cfg *config.Config) (gateway.Backend, func(), error) {
	secret := cfg.Auth.TokenSecret
	if secret == "" {
		secret = "dev-only-secret"
		logger.Warn().Msg("no token secret configured; using a development secret")
	}
	signer := auth.NewSigner(secret, cfg.Auth.Issuer, cfg.Auth.SessionTTL)

	switch cfg.Gateway.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, database.Config{
			DSN:      cfg.PostgresDSN(),
			MaxConns: cfg.Database.MaxConns,
		}, logger.With("database"))
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.New(pool, signer, cfg.Gateway.PublicURL), pool.Close, nil

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		store := mongostore.New(client.Database(cfg.Mongo.Database), signer, cfg.Gateway.PublicURL)
		if err := store.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		return store, disconnect, nil

	default:
		return gateway.NewMemory(signer, cfg.Gateway.PublicURL), func() {}, nil
	}
}
