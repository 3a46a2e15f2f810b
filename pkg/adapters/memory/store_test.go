package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	sess := &conversation.Session{Script: "intro", Line: 1, History: []int{1}}
	if err := store.Save(ctx, "s1", sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Mutations after Save must not reach the stored copy.
	sess.Line = 99
	sess.History[0] = 99

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Line != 1 || loaded.History[0] != 1 {
		t.Errorf("store leaked caller state: %+v", loaded)
	}

	// Mutations of a loaded copy must not reach the store either.
	loaded.History[0] = 42
	again, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again.History[0] != 1 {
		t.Errorf("loaded session aliases store state: %+v", again)
	}
}
