package conversation

import "github.com/aretw0/parley/pkg/script"

// stripped keeps the link data of one authored line for the edge pass,
// in input order.
type stripped struct {
	id      int
	idx     int
	next    *int
	choices []script.Choice
	end     bool
}

// Compile validates a script and builds the traversable graph.
// It fails fast: the first problem found is returned and no partial graph
// survives. On success the cursor sits on the start line.
func Compile(s script.Script) (*Conversation, error) {
	if len(s.Lines) == 0 {
		return nil, ErrNoLines
	}

	// Talker lookup. Later entries silently overwrite earlier ones with the
	// same name; duplicate talker names are accepted, unlike line ids.
	talkers := make(map[string]script.Talker, len(s.Talkers))
	for _, t := range s.Talkers {
		talkers[t.Name] = t
	}

	c := &Conversation{
		nodes: make([]Node, 0, len(s.Lines)),
		out:   make([][]int, 0, len(s.Lines)),
		byID:  make(map[int]int, len(s.Lines)),
		start: -1,
	}
	order := make([]stripped, 0, len(s.Lines))

	for _, line := range s.Lines {
		var talker *script.Talker
		if line.Talker != "" {
			t, ok := talkers[line.Talker]
			if !ok {
				return nil, &TalkerNotFoundError{Line: line.ID, Talker: line.Talker}
			}
			talker = &t
		}

		kind, err := resolveKind(line)
		if err != nil {
			return nil, err
		}

		idx := len(c.nodes)
		c.nodes = append(c.nodes, Node{
			ID:      line.ID,
			Kind:    kind,
			Text:    line.Text,
			Talker:  talker,
			Choices: cloneChoices(line.Choices),
			End:     line.End,
		})
		c.out = append(c.out, nil)

		if line.Start {
			if c.start >= 0 {
				return nil, ErrMultipleStartingLines
			}
			c.start = idx
		}

		if _, dup := c.byID[line.ID]; dup {
			return nil, &RepeatedIDError{Line: line.ID}
		}
		c.byID[line.ID] = idx
		order = append(order, stripped{
			id:      line.ID,
			idx:     idx,
			next:    line.Next,
			choices: line.Choices,
			end:     line.End,
		})
	}

	if c.start < 0 {
		return nil, ErrNoStartingLine
	}

	// Edge pass, in input order. next has priority over choices; an end
	// line gets no outgoing edges at all; a line with neither link is a
	// valid terminal.
	for _, l := range order {
		if l.end {
			continue
		}
		if l.next != nil {
			target, ok := c.byID[*l.next]
			if !ok {
				return nil, &NextLineNotFoundError{Line: l.id, Target: *l.next}
			}
			c.addEdge(l.idx, target)
			continue
		}
		for _, choice := range l.choices {
			target, ok := c.byID[choice.Next]
			if !ok {
				return nil, &NextLineNotFoundError{Line: l.id, Target: choice.Next}
			}
			c.addEdge(l.idx, target)
		}
	}

	c.current = c.start
	return c, nil
}

// resolveKind maps the authored kind to the compiled tag.
// Lines with choices and no next are choice nodes; enter/exit cannot carry
// that shape, since choice nodes are left by jumping, not advancing.
func resolveKind(line script.Line) (Kind, error) {
	structuralChoice := len(line.Choices) > 0 && line.Next == nil

	switch line.Kind {
	case "", script.KindTalk:
		if structuralChoice {
			return KindChoice, nil
		}
		return KindTalk, nil
	case script.KindEnter:
		if structuralChoice {
			return "", &InvalidKindError{Line: line.ID, Kind: line.Kind}
		}
		return KindEnter, nil
	case script.KindExit:
		if structuralChoice {
			return "", &InvalidKindError{Line: line.ID, Kind: line.Kind}
		}
		return KindExit, nil
	default:
		return "", &InvalidKindError{Line: line.ID, Kind: line.Kind}
	}
}

func cloneChoices(choices []script.Choice) []script.Choice {
	if len(choices) == 0 {
		return nil
	}
	out := make([]script.Choice, len(choices))
	copy(out, choices)
	return out
}
