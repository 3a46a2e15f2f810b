package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/conversation"
)

// SessionStore defines the interface for persisting traversal sessions.
// This allows for durable playthroughs, enabling "stop & resume" workflows.
type SessionStore interface {
	// Save persists the session snapshot under the given ID.
	Save(ctx context.Context, sessionID string, sess *conversation.Session) error

	// Load retrieves the session for a given ID.
	// Returns conversation.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*conversation.Session, error)

	// Delete removes the session for a given ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
