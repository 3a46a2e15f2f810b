package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
)

// RunWatch plays the script in development mode, reloading whenever its
// document changes on disk.
func RunWatch(opts RunOptions) error {
	cfg, err := loadEnv()
	if err != nil {
		return err
	}
	logger := createLogger(opts.Debug, cfg)
	tui.PrintBanner(parley.Version)

	// Default session for watch mode so hot reload is stateful by default.
	// Scope it by path and script to prevent collisions between projects.
	if opts.SessionID == "" {
		hash := md5.Sum([]byte(opts.Path + "/" + opts.Script))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}

	if opts.Fresh {
		if err := ResetSession(opts); err != nil {
			return err
		}
	}

	store, err := setupPersistence(opts, cfg, logger)
	if err != nil {
		return err
	}
	defer CloseStore(store)

	logger.Info("starting watcher", "path", opts.Path, "script", opts.Script, "session_id", opts.SessionID)
	printSystemMessage("Watching '%s', session '%s'.", opts.Script, opts.SessionID)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	// Reuse one text handler across iterations so reloads do not spawn
	// ghost Stdin pumps.
	ioHandler := runner.NewTextHandler(os.Stdin, os.Stdout,
		runner.WithTextHandlerRenderer(tui.NewRenderer()))

	for {
		if !runWatchIteration(sigCtx, opts, store, ioHandler, logger) {
			break
		}
		logger.Info("watcher restarting")
	}

	return nil
}

// runWatchIteration runs the script once under a reloadable context.
// It returns false when the watch loop should stop.
func runWatchIteration(parentCtx *SignalContext, opts RunOptions, store ports.SessionStore, ioHandler runner.IOHandler, logger *slog.Logger) bool {
	// Child context a reload can cancel without touching the parent signal
	// context.
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	engine, err := createEngine(opts, logger)
	if err != nil {
		logger.Error("engine initialization failed", "err", err)
		printSystemMessage("Error: %v", err)
		select {
		case <-parentCtx.Done():
			return false
		case <-time.After(2 * time.Second):
			return true
		}
	}

	watchCh, err := engine.Watch(ctx)
	if err != nil {
		logger.Error("loader does not support watching", "err", err)
		printSystemMessage("Error: %v", err)
		return false
	}

	// Reload routine: one reload per iteration, filtered to the script
	// being played.
	reloadCh := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case name, ok := <-watchCh:
				if !ok {
					return
				}
				if name != opts.Script {
					logger.Debug("ignoring change", "script", name)
					continue
				}
				logger.Info("change detected, triggering reload", "script", name)
				if !opts.Debug {
					fmt.Printf("\n")
				}
				printSystemMessage("Change detected in '%s'.", name)
				// Give the editor time to finish writing.
				time.Sleep(100 * time.Millisecond)
				reloadCh <- struct{}{}
				cancel()
				return
			}
		}
	}()

	r := runner.NewRunner(createRunnerOptions(logger, opts, store, ioHandler)...)

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- r.Run(ctx, engine, opts.Script)
	}()

	select {
	case <-parentCtx.Done():
		cancel()
		<-doneCh
		logCompletion(context.Canceled, opts.Debug, true, false, parentCtx.Signal())
		logger.Info("stopping watcher", "signal", parentCtx.Signal())
		return false
	case <-reloadCh:
		cancel()
		<-doneCh
		return true
	case err := <-doneCh:
		return handleRunCompletion(ctx, err, parentCtx, logger, opts.Debug)
	}
}

// handleRunCompletion decides what to do after the runner exits on its own:
// park until the next change, stop on interrupts, or reload immediately when
// the iteration context was already cancelled.
func handleRunCompletion(ctx context.Context, err error, parentCtx *SignalContext, logger *slog.Logger, debug bool) bool {
	if err != nil {
		// Context cancellation is a reload request.
		if errors.Is(err, context.Canceled) {
			return true
		}
		if isInterrupted(err) {
			return false
		}
		logger.Error("runtime error", "err", err)
		printSystemMessage("Error: %v", err)
		printSystemMessage("Waiting for changes...")
	} else {
		logCompletion(nil, debug, false, false, nil)
		printSystemMessage("Waiting for changes...")
	}

	logger.Info("conversation finished, waiting for changes")
	select {
	case <-parentCtx.Done():
		logCompletion(context.Canceled, debug, false, false, parentCtx.Signal())
		logger.Info("stopping watcher (signal received)")
		return false
	case <-ctx.Done():
		// The reload routine cancelled the iteration context.
		return true
	}
}
