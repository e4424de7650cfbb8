package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/notpogix/twitch-subgoal-overlay/internal/app"
	"github.com/notpogix/twitch-subgoal-overlay/internal/config"
	"github.com/notpogix/twitch-subgoal-overlay/internal/crypto"
	"github.com/notpogix/twitch-subgoal-overlay/internal/database"
	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
	"github.com/notpogix/twitch-subgoal-overlay/internal/logging"
	"github.com/notpogix/twitch-subgoal-overlay/internal/metrics"
	"github.com/notpogix/twitch-subgoal-overlay/internal/redis"
	"github.com/notpogix/twitch-subgoal-overlay/internal/server"
	"github.com/notpogix/twitch-subgoal-overlay/internal/subgoal"
	"github.com/notpogix/twitch-subgoal-overlay/internal/twitch"
	"github.com/notpogix/twitch-subgoal-overlay/internal/version"
)

const setupTimeout = 10 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupStore picks the credential store backend from the STORE_URL scheme.
// A durable backend that cannot be reached at startup downgrades to
// memory-only mode with a warning instead of refusing to start.
func setupStore(cfg *config.Config, clock clockwork.Clock) (domain.CredentialRepository, func()) {
	backend, err := cfg.Backend()
	if err != nil {
		slog.Error("Invalid store configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	switch backend {
	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.StoreURL)
		if err != nil {
			slog.Warn("Postgres unavailable, falling back to memory-only mode", "error", err)
			break
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}

		cryptoSvc, err := setupCrypto(cfg)
		if err != nil {
			slog.Error("Failed to create crypto service", "error", err)
			os.Exit(1)
		}

		return database.NewCredentialRepo(pool, cryptoSvc), pool.Close

	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.StoreURL)
		if err != nil {
			slog.Warn("Redis unavailable, falling back to memory-only mode", "error", err)
			break
		}
		return redis.NewCredentialRepo(client, clock), func() { _ = client.Close() }

	case config.BackendMemory:
		slog.Warn("No STORE_URL configured, credentials will not survive restarts")
	}

	return subgoal.NewMemoryCredentialRepo(clock), func() {}
}

func setupCrypto(cfg *config.Config) (crypto.Service, error) {
	if cfg.TokenEncryptionKey == "" {
		return crypto.NoopService{}, nil
	}
	return crypto.NewAesGcmCryptoService(cfg.TokenEncryptionKey)
}

func runGracefulShutdown(srv *server.Server, appSvc *app.Service, closeStore func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		appSvc.Stop()
		closeStore()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", info.String())

	repo, closeStore := setupStore(cfg, clock)
	defer closeStore()

	oauthClient := twitch.NewOAuthClient(cfg.TwitchClientID, cfg.TwitchClientSecret, cfg.TwitchRedirectURI)

	helixClient, err := twitch.NewClient(cfg.TwitchClientID)
	if err != nil {
		slog.Error("Failed to create Twitch client", "error", err)
		os.Exit(1)
	}

	appSvc := app.NewService(repo, oauthClient, helixClient, clock)

	// Hydration failure is not fatal: the cache refills as channels reauthorize.
	hydrateCtx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	if err := appSvc.LoadCredentials(hydrateCtx); err != nil {
		slog.Error("Failed to hydrate credential cache", "error", err)
	}
	cancel()

	srv, err := server.NewServer(cfg, appSvc)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, appSvc, closeStore)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
