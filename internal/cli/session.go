package cli

import (
	"context"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/runner"
)

// RunSession executes a single playthrough of the selected script.
func RunSession(opts RunOptions) error {
	cfg, err := loadEnv()
	if err != nil {
		return err
	}

	logger := createLogger(opts.Debug, cfg)
	quiet := opts.JSON || opts.Headless

	if !quiet {
		tui.PrintBanner(parley.Version)
	}

	engine, err := createEngine(opts, logger)
	if err != nil {
		return err
	}

	store, err := setupPersistence(opts, cfg, logger)
	if err != nil {
		return err
	}
	defer CloseStore(store)

	// Use the unified SignalContext helper so the signal that stopped the
	// run is still known when printing the goodbye.
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	logSessionStatus(logger, opts.SessionID, quiet)

	r := runner.NewRunner(createRunnerOptions(logger, opts, store, nil)...)

	runErr := r.Run(sigCtx, engine, opts.Script)

	// Interrupts surface as a clean EOF exit; recover the cause so the
	// goodbye message matches what happened.
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	logCompletion(runErr, opts.Debug, true, quiet, sigCtx.Signal())

	return handleExecutionError(runErr)
}
