package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/conversation"
)

// Engine is the driving surface exposed to transport adapters (HTTP, MCP).
// The root facade implements it; adapters stay decoupled from its concrete
// type so tests can swap in fixtures.
type Engine interface {
	// Scripts lists the script names the engine can open.
	Scripts() ([]string, error)

	// Open fetches, parses and compiles the named script. The returned
	// conversation sits on its start line.
	Open(name string) (*conversation.Conversation, error)

	// Advance moves the cursor along the current line's next edge,
	// firing any configured hooks.
	Advance(ctx context.Context, c *conversation.Conversation) error

	// Jump moves the cursor to the line with the given id, firing any
	// configured hooks.
	Jump(ctx context.Context, c *conversation.Conversation, id int) error
}
