package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Command is the structured input accepted by JSONHandler, one JSON object
// per line.
type Command struct {
	// Action is "advance", "jump" or "quit".
	Action string `json:"action"`
	// Target is the line id for jump commands.
	Target int `json:"target,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines
// communication, one view out and one command in per line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, view View) (bool, error) {
	if err := h.Encoder.Encode(view); err != nil {
		return false, err
	}
	return !view.End, nil
}

// Input reads one line and translates it into the runner's command language.
// A JSON object is decoded as a Command; a JSON string is unquoted; anything
// else passes through as raw text, so plain "next" works in a pinch.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}

	text = strings.TrimSpace(text)

	var cmd Command
	if err := json.Unmarshal([]byte(text), &cmd); err == nil && cmd.Action != "" {
		switch cmd.Action {
		case "advance":
			return "next", nil
		case "jump":
			return fmt.Sprintf("jump %d", cmd.Target), nil
		case "quit":
			return "quit", nil
		default:
			return "", fmt.Errorf("unknown action %q", cmd.Action)
		}
	}

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}

	return text, nil
}

// SystemOutput emits the message as a structured system record so it never
// collides with view lines.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
