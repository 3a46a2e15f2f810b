package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/parley/internal/logging"
	httpadapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/ports"
)

// ServeOptions configures the serve command. Empty fields fall back to the
// PARLEY_* environment.
type ServeOptions struct {
	Path     string
	Addr     string
	RedisURL string
	Debug    bool
}

// RunServe starts the HTTP adapter and blocks until a shutdown signal
// arrives or the listener fails.
func RunServe(opts ServeOptions) error {
	cfg, err := loadEnv()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(logging.Options{Level: level, Format: cfg.LogFormat, File: cfg.LogFile})

	engine, err := createEngine(RunOptions{Path: opts.Path, Debug: opts.Debug}, logger)
	if err != nil {
		return err
	}

	redisURL := opts.RedisURL
	if redisURL == "" {
		redisURL = cfg.RedisURL
	}

	// Redis gives sessions a shared home plus a distributed lock, so moves on
	// one session stay serialized across replicas. The default memory store
	// serves a single process.
	var base ports.SessionStore
	var locker ports.DistributedLocker
	if redisURL != "" {
		rs, err := redis.NewFromURL(redisURL, redis.WithTTL(cfg.SessionTTL))
		if err != nil {
			return fmt.Errorf("failed to connect session store: %w", err)
		}
		locker = redis.NewLocker(rs.Client(), "parley:")
		logger.Info("using redis session store", "ttl", cfg.SessionTTL)
		base = rs
	} else {
		base = memory.NewStore()
	}
	defer CloseStore(base)

	store, err := wrapStore(base, cfg, logger)
	if err != nil {
		return err
	}

	handlerOpts := []httpadapter.Option{
		httpadapter.WithLogger(logger),
		httpadapter.WithStore(store),
	}
	if locker != nil {
		handlerOpts = append(handlerOpts, httpadapter.WithLocker(locker))
	}

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Addr
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: httpadapter.NewHandler(engine, handlerOpts...),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("server listening", "addr", addr, "dir", opts.Path)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to stop server: %w", err)
			}
		}
		logger.Info("server stopped")
	}

	return nil
}
