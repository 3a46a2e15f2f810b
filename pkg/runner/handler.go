package runner

import (
	"context"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the view to the user.
	// Returns true if the runner should read input afterwards, which is
	// every line except a terminal one.
	Output(ctx context.Context, view View) (bool, error)

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. a rejected
	// command or a traversal error). This is distinct from dialogue content.
	SystemOutput(ctx context.Context, msg string) error
}
