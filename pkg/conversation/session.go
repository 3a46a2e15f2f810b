package conversation

import "time"

// Session is the persistable snapshot of one traversal. It carries no graph
// data; the script is recompiled on restore and the cursor reattached, so a
// stored session stays valid across process restarts.
type Session struct {
	// Script names the script this session walks, as known to the loader.
	Script string `json:"script"`

	// Line is the authored id of the current line.
	Line int `json:"line"`

	// History records the ids visited so far, start line included.
	History []int `json:"history,omitempty"`

	// UpdatedAt is set on every save.
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries an encrypted envelope produced by persistence
	// middleware. Normal sessions leave it empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates a snapshot positioned at the start of the conversation.
func NewSession(script string, c *Conversation) *Session {
	return &Session{
		Script:    script,
		Line:      c.StartID(),
		History:   []int{c.StartID()},
		UpdatedAt: time.Now().UTC(),
	}
}

// Track moves the snapshot to the conversation's current line and appends it
// to the history. Call it after a successful Advance or JumpTo.
func (s *Session) Track(c *Conversation) {
	s.Line = c.CurrentID()
	s.History = append(s.History, c.CurrentID())
	s.UpdatedAt = time.Now().UTC()
}

// Restore positions the conversation cursor on the snapshot's line.
func (s *Session) Restore(c *Conversation) error {
	return c.JumpTo(s.Line)
}
