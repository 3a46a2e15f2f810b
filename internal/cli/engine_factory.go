package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/adapters/file"
)

// createEngine initializes a Parley engine with standard CLI conventions.
func createEngine(opts RunOptions, logger *slog.Logger) (*parley.Engine, error) {
	engineOpts := []parley.Option{
		parley.WithLogger(logger),
	}

	// Debug mode narrates every cursor move on the logger.
	if opts.Debug {
		engineOpts = append(engineOpts, parley.WithHooks(createDebugHooks(logger)))
	}

	engine, err := parley.New(opts.Path, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	return engine, nil
}

// DetermineScript picks the script to play when the user names none.
// Conventions, in order: "start", "main", "index", the directory's own name.
// "start" is the final default so the error points at the usual place.
func DetermineScript(path string) string {
	loader := file.New(path)
	for _, name := range []string{"start", "main", "index", filepath.Base(path)} {
		if _, err := loader.GetScript(name); err == nil {
			return name
		}
	}
	return "start"
}
