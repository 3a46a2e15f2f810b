package runner

import (
	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/script"
)

// View is the presentation snapshot of a conversation cursor. Handlers
// render it, and rich clients (HTTP, MCP) return it verbatim so they always
// receive the content for the line they just entered.
type View struct {
	SessionID string `json:"session_id,omitempty"`
	Script    string `json:"script,omitempty"`

	Line    int               `json:"line"`
	Kind    conversation.Kind `json:"kind"`
	Text    string            `json:"text,omitempty"`
	Talkers []string          `json:"talkers,omitempty"`
	Choices []script.Choice   `json:"choices,omitempty"`

	// CanAdvance is true when the line is left by Advance rather than by
	// picking a choice.
	CanAdvance bool `json:"can_advance"`

	// End is true when the line has no way out and the conversation is over.
	End bool `json:"end"`
}

// NewView projects the current line of a conversation. SessionID and Script
// are left for the caller to fill in.
func NewView(c *conversation.Conversation) View {
	n := c.Current()
	v := View{
		Line:       n.ID,
		Kind:       n.Kind,
		Text:       n.Text,
		Choices:    n.Choices,
		CanAdvance: !c.AtEnd() && n.Kind != conversation.KindChoice,
		End:        c.AtEnd(),
	}
	for _, t := range n.Talkers() {
		v.Talkers = append(v.Talkers, t.Name)
	}
	return v
}
