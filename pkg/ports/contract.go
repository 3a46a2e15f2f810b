package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/conversation"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := &conversation.Session{
			Script:    "intro",
			Line:      4,
			History:   []int{1, 2, 4},
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess.Script, loaded.Script)
		assert.Equal(t, sess.Line, loaded.Line)
		assert.Equal(t, sess.History, loaded.History)
		// Timestamps survive serialization at second granularity; JSON
		// round-trips may drop the monotonic clock reading.
		assert.WithinDuration(t, sess.UpdatedAt, loaded.UpdatedAt, time.Second)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, conversation.ErrSessionNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		err := store.Save(ctx, sessionID, &conversation.Session{Script: "intro", Line: 1})
		require.NoError(t, err)
		err = store.Save(ctx, sessionID, &conversation.Session{Script: "intro", Line: 9})
		require.NoError(t, err)

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 9, loaded.Line, "later Save should win")
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, &conversation.Session{Script: "intro", Line: 1})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, conversation.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, &conversation.Session{Script: "intro", Line: 1})
		_ = store.Save(ctx, id2, &conversation.Session{Script: "intro", Line: 2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
