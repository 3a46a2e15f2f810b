package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/script"
)

func intp(v int) *int { return &v }

func compile(t *testing.T, s script.Script) *conversation.Conversation {
	t.Helper()
	c, err := conversation.Compile(s)
	if err != nil {
		t.Fatalf("Failed to compile fixture: %v", err)
	}
	return c
}

func TestLint(t *testing.T) {
	// Scenario A: clean graph, nothing to report.
	// 1 -> 2 -> 3 (end)
	clean := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: "Hello", Start: true, Next: intp(2)},
			{ID: 2, Text: "Still here", Next: intp(3)},
			{ID: 3, Text: "Bye", End: true},
		},
	})

	if warnings := Lint(clean); len(warnings) != 0 {
		t.Errorf("Scenario A (clean) should report nothing, got: %v", warnings)
	}

	// Scenario B: line 9 exists but no edge leads to it.
	orphan := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: "Hello", Start: true, End: true},
			{ID: 9, Text: "Nobody visits", End: true},
		},
	})

	warnings := Lint(orphan)
	if len(warnings) != 1 {
		t.Fatalf("Scenario B (orphan) expected 1 warning, got: %v", warnings)
	}
	if warnings[0].Line != 9 || !strings.Contains(warnings[0].Message, "unreachable") {
		t.Errorf("Expected unreachable warning for line 9, got: %v", warnings[0])
	}

	// Scenario C: line 2 has no next, no choices and no end flag, so the
	// cursor strands there at play time.
	deadEnd := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: "Hello", Start: true, Next: intp(2)},
			{ID: 2, Text: "And then nothing"},
		},
	})

	warnings = Lint(deadEnd)
	if len(warnings) != 1 {
		t.Fatalf("Scenario C (dead end) expected 1 warning, got: %v", warnings)
	}
	if warnings[0].Line != 2 || !strings.Contains(warnings[0].Message, "dead end") {
		t.Errorf("Expected dead end warning for line 2, got: %v", warnings[0])
	}
}

func TestLint_ShadowedChoices(t *testing.T) {
	// next wins over choices, so the listed branches never run.
	c := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: "Pick", Start: true, Next: intp(2), Choices: []script.Choice{
				{Text: "Left", Next: 2},
				{Text: "Right", Next: 3},
			}},
			{ID: 2, Text: "Left room", End: true},
			{ID: 3, Text: "Right room", End: true},
		},
	})

	warnings := Lint(c)

	var shadowed, unreachable bool
	for _, w := range warnings {
		if w.Line == 1 && strings.Contains(w.Message, "shadowed by the next link") {
			shadowed = true
		}
		// Line 3 only hangs off the dead choice, so it is unreachable too.
		if w.Line == 3 && strings.Contains(w.Message, "unreachable") {
			unreachable = true
		}
	}
	if !shadowed {
		t.Errorf("Expected shadowed choices warning for line 1, got: %v", warnings)
	}
	if !unreachable {
		t.Errorf("Expected unreachable warning for line 3, got: %v", warnings)
	}
}

func TestLint_EndSuppressesChoices(t *testing.T) {
	c := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: "Pick", Start: true, End: true, Choices: []script.Choice{
				{Text: "Left", Next: 2},
			}},
			{ID: 2, Text: "Left room", End: true},
		},
	})

	warnings := Lint(c)

	var suppressed bool
	for _, w := range warnings {
		if w.Line == 1 && strings.Contains(w.Message, "suppressed by the end flag") {
			suppressed = true
		}
	}
	if !suppressed {
		t.Errorf("Expected suppressed choices warning for line 1, got: %v", warnings)
	}
}

func TestWarning_String(t *testing.T) {
	w := Warning{Line: 4, Message: "dead end: no next, choices or end flag"}
	want := "line 4: dead end: no next, choices or end flag"
	if w.String() != want {
		t.Errorf("Expected %q, got %q", want, w.String())
	}
}
