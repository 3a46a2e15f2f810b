package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows
// retrieving the signal afterwards.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// cliEnv holds the environment overrides shared by every command.
type cliEnv struct {
	Addr          string        `env:"PARLEY_ADDR" envDefault:":8080"`
	LogFormat     string        `env:"PARLEY_LOG_FORMAT" envDefault:"text"`
	LogFile       string        `env:"PARLEY_LOG_FILE"`
	RedisURL      string        `env:"PARLEY_REDIS_URL"`
	SessionTTL    time.Duration `env:"PARLEY_SESSION_TTL"`
	EncryptionKey string        `env:"PARLEY_ENCRYPTION_KEY"`
	HistoryLimit  int           `env:"PARLEY_HISTORY_LIMIT"`
}

func loadEnv() (cliEnv, error) {
	var cfg cliEnv
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// createLogger configures the application logger.
// In debug mode it writes to Stderr, keeping Stdout clean for the dialogue;
// PARLEY_LOG_FILE redirects it to a rotating file instead.
func createLogger(debug bool, cfg cliEnv) *slog.Logger {
	if !debug {
		return logging.NewNop()
	}
	return logging.New(logging.Options{
		Level:  slog.LevelDebug,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func logSessionStatus(logger *slog.Logger, sessionID string, quiet bool) {
	if sessionID == "" {
		return
	}
	logger.Info("session active", "session_id", sessionID)
	if !quiet {
		printSystemMessage("Session '%s' active.", sessionID)
	}
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(logger *slog.Logger, opts RunOptions, store ports.SessionStore, handler runner.IOHandler) []runner.Option {
	rOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithHeadless(opts.Headless),
	}

	if opts.SessionID != "" && store != nil {
		rOpts = append(rOpts,
			runner.WithSessionID(opts.SessionID),
			runner.WithStore(store),
		)
	}

	switch {
	case opts.JSON:
		rOpts = append(rOpts, runner.WithInputHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)))
	case handler != nil:
		rOpts = append(rOpts, runner.WithInputHandler(handler))
	case !opts.Headless:
		rOpts = append(rOpts, runner.WithRenderer(tui.NewRenderer()))
	}

	return rOpts
}

func createDebugHooks(logger *slog.Logger) conversation.Hooks {
	return conversation.Hooks{
		OnLineEnter: func(ctx context.Context, e *conversation.LineEvent) {
			logger.Debug("line entered", "id", e.ID, "kind", e.Kind)
		},
		OnLineLeave: func(ctx context.Context, e *conversation.LineEvent) {
			logger.Debug("line left", "id", e.ID)
		},
		OnChoices: func(ctx context.Context, e *conversation.ChoicesEvent) {
			logger.Debug("choices offered", "id", e.ID, "count", len(e.Targets))
		},
	}
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	// The runner reports signal cancellation as a clean EOF.
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a zero exit code.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

func logCompletion(err error, debug, promptActive, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	if err == nil {
		printSystemMessage("The conversation has ended.")
		return
	}

	if isInterrupted(err) {
		switch {
		case sig == os.Interrupt:
			// Aesthetic: echo the [CTRL+C] the terminal swallowed.
			if debug || !promptActive {
				fmt.Printf("> [CTRL+C]\n")
			} else {
				fmt.Printf("[CTRL+C]\n")
			}
			printSystemMessage("Interrupted.")
		case sig != nil:
			fmt.Printf("\n")
			printSystemMessage("Terminated.")
		default:
			fmt.Printf("\n")
			printSystemMessage("Interrupted.")
		}
	}
}

// setupPersistence builds the session store for the configured backend, or
// nil when the playthrough is ephemeral. Redis serves multi-process setups;
// the default is JSON files under <dir>/.parley/sessions.
func setupPersistence(opts RunOptions, cfg cliEnv, logger *slog.Logger) (ports.SessionStore, error) {
	if opts.SessionID == "" {
		return nil, nil
	}

	redisURL := opts.RedisURL
	if redisURL == "" {
		redisURL = cfg.RedisURL
	}

	var store ports.SessionStore
	if redisURL != "" {
		rs, err := redis.NewFromURL(redisURL, redis.WithTTL(cfg.SessionTTL))
		if err != nil {
			return nil, fmt.Errorf("failed to connect session store: %w", err)
		}
		logger.Debug("using redis session store", "ttl", cfg.SessionTTL)
		store = rs
	} else {
		store = file.NewStore(sessionDir(opts.Path))
	}

	return wrapStore(store, cfg, logger)
}

// wrapStore applies the configured persistence middleware. Encryption wraps
// the backend; the history cap wraps encryption so the envelope stores the
// already trimmed record.
func wrapStore(store ports.SessionStore, cfg cliEnv, logger *slog.Logger) (ports.SessionStore, error) {
	if cfg.EncryptionKey != "" {
		enc, err := encryptionFromEnv(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		store = enc(store)
		logger.Debug("session encryption enabled")
	}
	if cfg.HistoryLimit > 0 {
		store = middleware.NewHistoryLimitMiddleware(cfg.HistoryLimit)(store)
	}
	return store, nil
}

// sessionDir places file sessions next to the content they belong to.
func sessionDir(path string) string {
	return filepath.Join(path, ".parley", "sessions")
}

// OpenStore builds the session store the housekeeping commands target,
// honoring the same backend selection and middleware as the play modes.
func OpenStore(dir, redisURL string) (ports.SessionStore, error) {
	cfg, err := loadEnv()
	if err != nil {
		return nil, err
	}

	if redisURL == "" {
		redisURL = cfg.RedisURL
	}

	var store ports.SessionStore
	if redisURL != "" {
		rs, err := redis.NewFromURL(redisURL, redis.WithTTL(cfg.SessionTTL))
		if err != nil {
			return nil, fmt.Errorf("failed to connect session store: %w", err)
		}
		store = rs
	} else {
		store = file.NewStore(sessionDir(dir))
	}

	return wrapStore(store, cfg, logging.NewNop())
}

// encryptionFromEnv parses PARLEY_ENCRYPTION_KEY: comma-separated hex keys,
// the active one first, older rotation keys after it.
func encryptionFromEnv(raw string) (middleware.Middleware, error) {
	var keys [][]byte
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, err := hex.DecodeString(part)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption keys must be 32 bytes (64 hex chars), got %d", len(key))
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no usable encryption keys configured")
	}

	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    keys[0],
		FallbackKeys: keys[1:],
	}), nil
}

// CloseStore releases the store's backing connection when it has one.
func CloseStore(store ports.SessionStore) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}

// ResetSession clears the stored session data for the configured ID.
func ResetSession(opts RunOptions) error {
	if opts.SessionID == "" {
		return nil
	}

	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	store, err := setupPersistence(opts, cfg, logging.NewNop())
	if err != nil {
		return err
	}
	defer CloseStore(store)

	if err := store.Delete(context.Background(), opts.SessionID); err != nil {
		return fmt.Errorf("failed to reset session %s: %w", opts.SessionID, err)
	}
	return nil
}
