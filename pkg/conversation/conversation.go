package conversation

import "github.com/aretw0/parley/pkg/script"

// Conversation is a compiled dialogue graph with a cursor. Build one with
// Compile; the zero value is not usable.
//
// Mutating methods (Advance, JumpTo, Reset) leave the cursor untouched when
// they return an error. A Conversation is not safe for concurrent use; wrap
// it in a session.Manager or Clone it per goroutine.
type Conversation struct {
	nodes []Node
	out   [][]int
	edges int

	byID    map[int]int
	start   int
	current int
}

func (c *Conversation) addEdge(from, to int) {
	c.out[from] = append(c.out[from], to)
	c.edges++
}

// Advance moves the cursor along the single outgoing edge of the current
// line. It fails with ErrChoicesNotHandled on a choice line, where the
// caller must pick a branch with JumpTo, and with ErrNoNextAction on a
// terminal line.
func (c *Conversation) Advance() error {
	cur := c.nodes[c.current]
	if cur.Kind == KindChoice {
		return ErrChoicesNotHandled
	}
	if len(c.out[c.current]) == 0 {
		return ErrNoNextAction
	}
	c.current = c.out[c.current][0]
	return nil
}

// JumpTo moves the cursor to the line with the given id. Any compiled line
// is a valid target, not just the current choices; scripts rely on that for
// loops and shortcuts.
func (c *Conversation) JumpTo(id int) error {
	idx, ok := c.byID[id]
	if !ok {
		return &WrongJumpError{Target: id}
	}
	c.current = idx
	return nil
}

// Reset puts the cursor back on the start line.
func (c *Conversation) Reset() {
	c.current = c.start
}

// Current returns the node under the cursor.
func (c *Conversation) Current() Node {
	return c.nodes[c.current]
}

// CurrentID returns the authored id of the current line.
func (c *Conversation) CurrentID() int {
	return c.nodes[c.current].ID
}

// CurrentText returns the text of the current line, which may be empty.
func (c *Conversation) CurrentText() string {
	return c.nodes[c.current].Text
}

// CurrentKind returns the kind tag of the current line.
func (c *Conversation) CurrentKind() Kind {
	return c.nodes[c.current].Kind
}

// CurrentTalkers returns the talkers attached to the current line. The slice
// holds zero or one entries; it is a slice so multi-talker lines can arrive
// without breaking callers.
func (c *Conversation) CurrentTalkers() []script.Talker {
	return c.nodes[c.current].Talkers()
}

// CurrentChoices returns the choices offered by the current line, or nil
// when it has none.
func (c *Conversation) CurrentChoices() []script.Choice {
	return c.nodes[c.current].Choices
}

// AtEnd reports whether the current line has no outgoing edges.
func (c *Conversation) AtEnd() bool {
	return len(c.out[c.current]) == 0
}

// StartID returns the authored id of the start line.
func (c *Conversation) StartID() int {
	return c.nodes[c.start].ID
}

// NodeCount returns the number of compiled lines.
func (c *Conversation) NodeCount() int {
	return len(c.nodes)
}

// EdgeCount returns the number of compiled transitions.
func (c *Conversation) EdgeCount() int {
	return c.edges
}

// IDs returns every authored line id in input order.
func (c *Conversation) IDs() []int {
	ids := make([]int, len(c.nodes))
	for i, n := range c.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Node returns the line with the given id.
func (c *Conversation) Node(id int) (Node, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Node{}, false
	}
	return c.nodes[idx], true
}

// Out returns the ids reachable from the given line, in edge order, or nil
// when the id is unknown. next edges come first by construction.
func (c *Conversation) Out(id int) []int {
	idx, ok := c.byID[id]
	if !ok {
		return nil
	}
	targets := c.out[idx]
	if len(targets) == 0 {
		return nil
	}
	ids := make([]int, len(targets))
	for i, t := range targets {
		ids[i] = c.nodes[t].ID
	}
	return ids
}

// Clone returns an independent copy sharing no mutable state, cursor
// included. The graph itself is immutable after Compile, so node and edge
// storage is copied shallowly where safe.
func (c *Conversation) Clone() *Conversation {
	cp := &Conversation{
		nodes:   make([]Node, len(c.nodes)),
		out:     make([][]int, len(c.out)),
		edges:   c.edges,
		byID:    make(map[int]int, len(c.byID)),
		start:   c.start,
		current: c.current,
	}
	copy(cp.nodes, c.nodes)
	for i, targets := range c.out {
		if len(targets) == 0 {
			continue
		}
		cp.out[i] = make([]int, len(targets))
		copy(cp.out[i], targets)
	}
	for id, idx := range c.byID {
		cp.byID[id] = idx
	}
	return cp
}
