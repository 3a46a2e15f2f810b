package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/internal/presentation/graph"
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

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		script   script.Script
		contains []string
	}{
		{
			name: "Start Line Shape",
			script: script.Script{
				Lines: []script.Line{
					{ID: 1, Text: "Hello", Start: true, End: true},
				},
			},
			contains: []string{
				`L1(("Hello"))`,
			},
		},
		{
			name: "Choice Shape And Edge Labels",
			script: script.Script{
				Lines: []script.Line{
					{ID: 1, Text: "Intro", Start: true, Next: intp(2)},
					{ID: 2, Text: "Which door?", Choices: []script.Choice{
						{Text: "Left", Next: 3},
						{Text: "Right", Next: 4},
					}},
					{ID: 3, Text: "Left room", End: true},
					{ID: 4, Text: "Right room", End: true},
				},
			},
			contains: []string{
				`L2{"Which door?"}`,
				`L2 -- "Left" --> L3`,
				`L2 -- "Right" --> L4`,
				`L1 --> L2`,
			},
		},
		{
			name: "Stage Direction Shapes",
			script: script.Script{
				Talkers: []script.Talker{{Name: "Ava"}},
				Lines: []script.Line{
					{ID: 1, Text: "Scene opens", Start: true, Next: intp(2)},
					{ID: 2, Kind: script.KindEnter, Talker: "Ava", Next: intp(3)},
					{ID: 3, Kind: script.KindExit, Talker: "Ava", End: true},
				},
			},
			contains: []string{
				`L2[/"Ava enters"/]`,
				`L3[/"Ava leaves"/]`,
			},
		},
		{
			name: "Talker Prefix",
			script: script.Script{
				Talkers: []script.Talker{{Name: "Ava"}},
				Lines: []script.Line{
					{ID: 1, Talker: "Ava", Text: "Hello there", Start: true, End: true},
				},
			},
			contains: []string{
				`L1(("Ava: Hello there"))`,
			},
		},
		{
			name: "Label Escaping",
			script: script.Script{
				Lines: []script.Line{
					{ID: 1, Text: `Say "yes"`, Start: true, End: true},
				},
			},
			contains: []string{
				`L1(("Say 'yes'"))`,
			},
		},
		{
			name: "ID Sanitization",
			script: script.Script{
				Lines: []script.Line{
					{ID: -1, Text: "Hello", Start: true, End: true},
				},
			},
			contains: []string{
				`L_1(("Hello"))`,
			},
		},
		{
			name: "Empty Text Fallback",
			script: script.Script{
				Lines: []script.Line{
					{ID: 7, Start: true, End: true},
				},
			},
			contains: []string{
				`L7(("line 7"))`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(compile(t, tt.script), nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestGenerateMermaid_TruncatesLongLabels(t *testing.T) {
	long := strings.Repeat("na", 40) + " batman"
	c := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: long, Start: true, End: true},
		},
	})

	got := graph.GenerateMermaid(c, nil)

	if strings.Contains(got, long) {
		t.Error("Expected long label to be cut")
	}
	if !strings.Contains(got, "...") {
		t.Errorf("Expected ellipsis in output, got:\n%v", got)
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	c := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: "Hello", Start: true, Next: intp(2)},
			{ID: 2, Text: "Middle", Next: intp(3)},
			{ID: 3, Text: "Bye", End: true},
		},
	})

	got := graph.GenerateMermaid(c, &graph.Overlay{
		VisitedLines: []int{1, 2, 1, 99},
		Current:      intp(2),
	})

	if !strings.Contains(got, "classDef visited") || !strings.Contains(got, "classDef current") {
		t.Errorf("Expected overlay class definitions, got:\n%v", got)
	}
	if n := strings.Count(got, "class L1 visited;"); n != 1 {
		t.Errorf("Expected line 1 styled visited exactly once, got %d times", n)
	}
	if !strings.Contains(got, "class L2 current;") {
		t.Errorf("Expected line 2 styled current, got:\n%v", got)
	}
	if strings.Contains(got, "L99") {
		t.Error("Expected unknown history ids to be skipped")
	}
}

func TestGenerateMermaid_NoOverlay(t *testing.T) {
	c := compile(t, script.Script{
		Lines: []script.Line{
			{ID: 1, Text: "Hello", Start: true, End: true},
		},
	})

	if got := graph.GenerateMermaid(c, nil); strings.Contains(got, "classDef") {
		t.Errorf("Expected no style block without an overlay, got:\n%v", got)
	}
}
