package conversation_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/parley/pkg/conversation"
)

func TestSession_Lifecycle(t *testing.T) {
	c := mustCompile(t, choiceScript())

	sess := conversation.NewSession("doors", c)
	if sess.Script != "doors" {
		t.Errorf("expected script %q, got %q", "doors", sess.Script)
	}
	if sess.Line != 1 {
		t.Errorf("new session should sit on the start line, got %d", sess.Line)
	}
	if len(sess.History) != 1 || sess.History[0] != 1 {
		t.Errorf("history should open with the start line, got %v", sess.History)
	}
	if sess.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	if err := c.JumpTo(3); err != nil {
		t.Fatalf("JumpTo failed: %v", err)
	}
	before := sess.UpdatedAt
	sess.Track(c)
	if sess.Line != 3 {
		t.Errorf("Track should follow the cursor, got line %d", sess.Line)
	}
	if len(sess.History) != 2 || sess.History[1] != 3 {
		t.Errorf("unexpected history: %v", sess.History)
	}
	if sess.UpdatedAt.Before(before) {
		t.Error("Track should refresh UpdatedAt")
	}
}

func TestSession_Restore(t *testing.T) {
	c := mustCompile(t, choiceScript())
	sess := conversation.NewSession("doors", c)
	if err := c.JumpTo(2); err != nil {
		t.Fatalf("JumpTo failed: %v", err)
	}
	sess.Track(c)

	// A fresh compile starts at line 1; Restore reattaches the cursor.
	fresh := mustCompile(t, choiceScript())
	if err := sess.Restore(fresh); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if fresh.CurrentID() != 2 {
		t.Errorf("expected cursor on line 2, got %d", fresh.CurrentID())
	}
}

func TestSession_RestoreAfterScriptChange(t *testing.T) {
	// The stored line may vanish when the script is edited between saves.
	// Restore then reports the jump failure instead of guessing.
	c := mustCompile(t, choiceScript())
	sess := conversation.NewSession("doors", c)
	sess.Line = 42

	err := sess.Restore(c)
	var wrong *conversation.WrongJumpError
	if !errors.As(err, &wrong) {
		t.Fatalf("expected WrongJumpError, got %v", err)
	}
}

func TestSession_JSONRoundTrip(t *testing.T) {
	c := mustCompile(t, choiceScript())
	sess := conversation.NewSession("doors", c)
	if err := c.JumpTo(3); err != nil {
		t.Fatalf("JumpTo failed: %v", err)
	}
	sess.Track(c)

	data, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got conversation.Session
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Script != sess.Script || got.Line != sess.Line {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.History) != 2 {
		t.Errorf("round trip lost history: %v", got.History)
	}
	if !got.UpdatedAt.Equal(sess.UpdatedAt) {
		t.Errorf("round trip changed UpdatedAt: %v vs %v", got.UpdatedAt, sess.UpdatedAt)
	}
}
