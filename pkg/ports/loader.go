package ports

import (
	"context"
	"errors"
)

// ErrScriptNotFound is returned by loaders when no script exists under the
// requested name. Transports match on it to distinguish a bad name from a
// broken backend.
var ErrScriptNotFound = errors.New("script not found")

// ScriptLoader defines how the engine retrieves script documents.
// This allows the storage layer (FS, Memory, embedded) to be decoupled.
type ScriptLoader interface {
	// GetScript retrieves the raw document of a script by name.
	// It returns the raw bytes (which script.Parse will decode) or an error.
	GetScript(name string) ([]byte, error)

	// ListScripts returns the names of all scripts available in the source.
	// This is used for discovery and tooling (e.g. 'parley validate --all').
	ListScripts() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the name of a script whenever its
	// backing document changes. It abstracts away the specific event details;
	// receivers reload the named script and re-render.
	Watch(ctx context.Context) (<-chan string, error)
}
