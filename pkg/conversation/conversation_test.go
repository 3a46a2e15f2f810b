package conversation_test

import (
	"errors"
	"testing"

	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/script"
)

// linearScript is two lines joined by next: 1 -> 2.
func linearScript() script.Script {
	return script.Script{Lines: []script.Line{
		{ID: 1, Text: "first", Start: true, Next: intp(2)},
		{ID: 2, Text: "second"},
	}}
}

// choiceScript is a start line offering two branches.
func choiceScript() script.Script {
	return script.Script{Lines: []script.Line{
		{ID: 1, Text: "pick a door", Start: true, Choices: []script.Choice{
			{Text: "left", Next: 2},
			{Text: "right", Next: 3},
		}},
		{ID: 2, Text: "left room"},
		{ID: 3, Text: "right room"},
	}}
}

func mustCompile(t *testing.T, s script.Script) *conversation.Conversation {
	t.Helper()
	c, err := conversation.Compile(s)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return c
}

func TestAdvance_Linear(t *testing.T) {
	c := mustCompile(t, linearScript())

	if c.CurrentText() != "first" {
		t.Fatalf("cursor should start on the start line, got %q", c.CurrentText())
	}
	if c.AtEnd() {
		t.Error("start line has an outgoing edge, AtEnd must be false")
	}

	if err := c.Advance(); err != nil {
		t.Fatalf("first Advance failed: %v", err)
	}
	if c.CurrentText() != "second" {
		t.Errorf("expected %q, got %q", "second", c.CurrentText())
	}
	if !c.AtEnd() {
		t.Error("second line is terminal, AtEnd must be true")
	}

	// A terminal line keeps failing on every further attempt, and the
	// cursor stays put.
	for i := 0; i < 2; i++ {
		if err := c.Advance(); !errors.Is(err, conversation.ErrNoNextAction) {
			t.Fatalf("expected ErrNoNextAction, got %v", err)
		}
		if c.CurrentText() != "second" {
			t.Errorf("failed Advance must not move the cursor, got %q", c.CurrentText())
		}
	}
}

func TestAdvance_ChoicesNotHandled(t *testing.T) {
	c := mustCompile(t, choiceScript())

	if err := c.Advance(); !errors.Is(err, conversation.ErrChoicesNotHandled) {
		t.Fatalf("expected ErrChoicesNotHandled, got %v", err)
	}
	if c.CurrentID() != 1 {
		t.Errorf("failed Advance must not move the cursor, got line %d", c.CurrentID())
	}
}

func TestJumpTo(t *testing.T) {
	t.Run("choice target", func(t *testing.T) {
		c := mustCompile(t, choiceScript())
		if err := c.JumpTo(3); err != nil {
			t.Fatalf("JumpTo failed: %v", err)
		}
		if c.CurrentText() != "right room" {
			t.Errorf("expected %q, got %q", "right room", c.CurrentText())
		}
	})

	t.Run("any compiled line", func(t *testing.T) {
		// Jump targets are not limited to the current choice set; loops
		// and shortcuts jump anywhere in the script.
		c := mustCompile(t, choiceScript())
		if err := c.JumpTo(2); err != nil {
			t.Fatalf("JumpTo failed: %v", err)
		}
		if err := c.JumpTo(1); err != nil {
			t.Fatalf("jump back to start failed: %v", err)
		}
		if c.CurrentID() != 1 {
			t.Errorf("expected line 1, got %d", c.CurrentID())
		}
	})

	t.Run("missing target", func(t *testing.T) {
		c := mustCompile(t, choiceScript())
		err := c.JumpTo(42)
		var wrong *conversation.WrongJumpError
		if !errors.As(err, &wrong) {
			t.Fatalf("expected WrongJumpError, got %v", err)
		}
		if wrong.Target != 42 {
			t.Errorf("expected target 42, got %d", wrong.Target)
		}
		if c.CurrentID() != 1 {
			t.Errorf("failed JumpTo must not move the cursor, got line %d", c.CurrentID())
		}
	})
}

func TestReset(t *testing.T) {
	c := mustCompile(t, linearScript())
	if err := c.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	c.Reset()
	if c.CurrentID() != c.StartID() {
		t.Errorf("Reset should return to the start line, got %d", c.CurrentID())
	}
}

func TestClone_IndependentCursor(t *testing.T) {
	c := mustCompile(t, choiceScript())
	cp := c.Clone()

	if err := cp.JumpTo(3); err != nil {
		t.Fatalf("JumpTo on clone failed: %v", err)
	}
	if c.CurrentID() != 1 {
		t.Errorf("moving the clone moved the original to line %d", c.CurrentID())
	}
	if cp.CurrentID() != 3 {
		t.Errorf("clone should sit on line 3, got %d", cp.CurrentID())
	}

	// Graph shape survives the copy.
	if cp.NodeCount() != c.NodeCount() || cp.EdgeCount() != c.EdgeCount() {
		t.Errorf("clone changed the graph: %d/%d vs %d/%d",
			cp.NodeCount(), cp.EdgeCount(), c.NodeCount(), c.EdgeCount())
	}
	if got := cp.Out(1); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("clone lost edges: %v", got)
	}
}

func TestQueries(t *testing.T) {
	s := script.Script{
		Talkers: []script.Talker{{Name: "alice", Asset: "alice.png"}},
		Lines: []script.Line{
			{ID: 10, Text: "Hello!", Talker: "alice", Start: true, Next: intp(20)},
			{ID: 20, Text: "pick", Choices: []script.Choice{{Text: "bye", Next: 30}}},
			{ID: 30, Text: "Bye.", End: true},
		},
	}
	c := mustCompile(t, s)

	t.Run("ids in input order", func(t *testing.T) {
		ids := c.IDs()
		want := []int{10, 20, 30}
		if len(ids) != len(want) {
			t.Fatalf("expected %v, got %v", want, ids)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, ids)
			}
		}
	})

	t.Run("node lookup", func(t *testing.T) {
		n, ok := c.Node(20)
		if !ok {
			t.Fatal("line 20 should exist")
		}
		if n.Kind != conversation.KindChoice || n.Text != "pick" {
			t.Errorf("unexpected node: %+v", n)
		}
		if _, ok := c.Node(99); ok {
			t.Error("line 99 should not exist")
		}
	})

	t.Run("out edges", func(t *testing.T) {
		if got := c.Out(10); len(got) != 1 || got[0] != 20 {
			t.Errorf("expected [20], got %v", got)
		}
		if got := c.Out(30); got != nil {
			t.Errorf("end line should have no edges, got %v", got)
		}
		if got := c.Out(99); got != nil {
			t.Errorf("unknown line should report nil, got %v", got)
		}
	})

	t.Run("current projections", func(t *testing.T) {
		if c.StartID() != 10 {
			t.Errorf("expected start 10, got %d", c.StartID())
		}
		talkers := c.CurrentTalkers()
		if len(talkers) != 1 || talkers[0].Name != "alice" {
			t.Errorf("expected alice, got %v", talkers)
		}
		if c.CurrentChoices() != nil {
			t.Errorf("talk line has no choices, got %v", c.CurrentChoices())
		}

		if err := c.Advance(); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		if c.CurrentTalkers() != nil {
			t.Errorf("narrated line has no talkers, got %v", c.CurrentTalkers())
		}
		choices := c.CurrentChoices()
		if len(choices) != 1 || choices[0].Text != "bye" || choices[0].Next != 30 {
			t.Errorf("unexpected choices: %v", choices)
		}
	})
}

func TestEvents(t *testing.T) {
	c := mustCompile(t, choiceScript())

	t.Run("line event", func(t *testing.T) {
		ev := conversation.EventFor(c.Current())
		if ev.ID != 1 || ev.Kind != conversation.KindChoice || ev.Text != "pick a door" {
			t.Errorf("unexpected event: %+v", ev)
		}
	})

	t.Run("choices event", func(t *testing.T) {
		ev, ok := conversation.ChoicesFor(c.Current())
		if !ok {
			t.Fatal("choice node should produce a choices event")
		}
		if len(ev.Targets) != 2 || ev.Targets[0] != 2 || ev.Targets[1] != 3 {
			t.Errorf("unexpected targets: %v", ev.Targets)
		}
		if len(ev.Labels) != 2 || ev.Labels[0] != "left" || ev.Labels[1] != "right" {
			t.Errorf("unexpected labels: %v", ev.Labels)
		}

		n, _ := c.Node(2)
		if _, ok := conversation.ChoicesFor(n); ok {
			t.Error("talk node must not produce a choices event")
		}
	})
}
