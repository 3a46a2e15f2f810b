package conversation

import "context"

// LineEvent describes the cursor arriving at or leaving a line.
type LineEvent struct {
	ID      int      `json:"id"`
	Kind    Kind     `json:"kind"`
	Text    string   `json:"text"`
	Talkers []string `json:"talkers,omitempty"`
	End     bool     `json:"end,omitempty"`
}

// ChoicesEvent is emitted when the cursor lands on a choice line.
type ChoicesEvent struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Targets []int    `json:"targets"`
	Labels  []string `json:"labels"`
}

// Hooks defines callbacks for traversal observability. All fields are
// optional; nil callbacks are skipped. Hooks run synchronously on the
// caller's goroutine, after the cursor has already moved. The core never
// fires them itself; the Engine facade and the runner do.
type Hooks struct {
	OnLineEnter func(context.Context, *LineEvent)
	OnLineLeave func(context.Context, *LineEvent)
	OnChoices   func(context.Context, *ChoicesEvent)
}

// EventFor builds the LineEvent for a node.
func EventFor(n Node) *LineEvent {
	ev := &LineEvent{
		ID:   n.ID,
		Kind: n.Kind,
		Text: n.Text,
		End:  n.End,
	}
	for _, t := range n.Talkers() {
		ev.Talkers = append(ev.Talkers, t.Name)
	}
	return ev
}

// ChoicesFor builds the ChoicesEvent for a choice node. The bool is false
// for any other kind.
func ChoicesFor(n Node) (*ChoicesEvent, bool) {
	if n.Kind != KindChoice {
		return nil, false
	}
	ev := &ChoicesEvent{ID: n.ID, Prompt: n.Text}
	for _, ch := range n.Choices {
		ev.Targets = append(ev.Targets, ch.Next)
		ev.Labels = append(ev.Labels, ch.Text)
	}
	return ev, true
}
