package middleware

import (
	"context"

	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/ports"
)

type historyLimitMiddleware struct {
	next  ports.SessionStore
	limit int
}

// NewHistoryLimitMiddleware creates a middleware that caps the stored visit
// history at the last limit entries. Long-running loops would otherwise grow
// the record without bound; the in-memory session keeps its full history,
// only the persisted copy is trimmed. A limit <= 0 stores no history at all.
func NewHistoryLimitMiddleware(limit int) Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		return &historyLimitMiddleware{next: next, limit: limit}
	}
}

func (m *historyLimitMiddleware) Save(ctx context.Context, sessionID string, sess *conversation.Session) error {
	// Clone to avoid side effects on the session the runner keeps using.
	trimmed := *sess
	if m.limit <= 0 {
		trimmed.History = nil
	} else if len(sess.History) > m.limit {
		tail := sess.History[len(sess.History)-m.limit:]
		trimmed.History = append([]int(nil), tail...)
	}

	return m.next.Save(ctx, sessionID, &trimmed)
}

func (m *historyLimitMiddleware) Load(ctx context.Context, sessionID string) (*conversation.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *historyLimitMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *historyLimitMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
