package conversation

import "github.com/aretw0/parley/pkg/script"

// Kind tags a compiled node with its dialogue role.
type Kind string

const (
	// KindTalk is a spoken or narrated line advanced via its next edge.
	KindTalk Kind = "talk"
	// KindChoice is a branching line; it is left by jumping to a choice
	// target, never by advancing.
	KindChoice Kind = "choice"
	// KindEnter marks a talker joining the scene.
	KindEnter Kind = "enter"
	// KindExit marks a talker leaving the scene.
	KindExit Kind = "exit"
)

// Node is the compiled form of one authored line. The compiler guarantees
// field validity per kind: only KindChoice nodes carry a non-empty Choices
// list that traversal will honor. Nodes are immutable after compilation.
type Node struct {
	// ID is the author-assigned line id. Traversal tracks nodes by internal
	// index; the id is what hosts use for jumps and bookkeeping.
	ID int

	Kind Kind
	Text string

	// Talker is the resolved speaker, cloned from the script's talker list,
	// or nil for narrated lines.
	Talker *script.Talker

	// Choices are copied from the authored line. When the line also had a
	// next link, next took priority and these are informational only.
	Choices []script.Choice

	// End records the authored end flag. An end line gets no outgoing
	// edges even if it declared next or choices.
	End bool
}

// Talkers returns the node's speakers as a list (zero or one element).
func (n Node) Talkers() []script.Talker {
	if n.Talker == nil {
		return nil
	}
	return []script.Talker{*n.Talker}
}
