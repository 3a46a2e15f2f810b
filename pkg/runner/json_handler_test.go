package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/script"
)

func TestJSONHandler_Output_RoundTrip(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(&bytes.Buffer{}, out)

	view := View{
		SessionID: "s1",
		Script:    "doors",
		Line:      1,
		Kind:      conversation.KindChoice,
		Text:      "Which door?",
		Choices: []script.Choice{
			{Text: "Left", Next: 2},
		},
	}

	needsInput, err := h.Output(context.Background(), view)
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if !needsInput {
		t.Error("Non-terminal view should request input")
	}

	var got View
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("Output is not one JSON line: %v", err)
	}
	if got.Line != 1 || got.Script != "doors" || len(got.Choices) != 1 {
		t.Errorf("Round trip mismatch: %+v", got)
	}
}

func TestJSONHandler_Output_End(t *testing.T) {
	h := NewJSONHandler(&bytes.Buffer{}, &bytes.Buffer{})

	needsInput, err := h.Output(context.Background(), View{Line: 9, End: true})
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if needsInput {
		t.Error("Terminal view should not request input")
	}
}

func TestJSONHandler_Input(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		wantErr bool
	}{
		{name: "advance", line: `{"action":"advance"}`, want: "next"},
		{name: "jump", line: `{"action":"jump","target":3}`, want: "jump 3"},
		{name: "quit", line: `{"action":"quit"}`, want: "quit"},
		{name: "unknown action", line: `{"action":"dance"}`, wantErr: true},
		{name: "quoted string", line: `"next"`, want: "next"},
		{name: "raw text", line: "next", want: "next"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewJSONHandler(bytes.NewBufferString(tt.line+"\n"), &bytes.Buffer{})

			got, err := h.Input(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Input(%q) should fail", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("Input(%q) failed: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("Input(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestJSONHandler_Input_EOF(t *testing.T) {
	h := NewJSONHandler(&bytes.Buffer{}, &bytes.Buffer{})

	if _, err := h.Input(context.Background()); err == nil {
		t.Error("Input on a drained reader should fail")
	}
}

func TestJSONHandler_SystemOutput(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(&bytes.Buffer{}, out)

	if err := h.SystemOutput(context.Background(), "boom"); err != nil {
		t.Fatalf("SystemOutput failed: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("SystemOutput is not one JSON line: %v", err)
	}
	if got["system"] != "boom" {
		t.Errorf("system = %q, want %q", got["system"], "boom")
	}
}
