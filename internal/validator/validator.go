package validator

import (
	"fmt"

	"github.com/aretw0/parley/pkg/conversation"
)

// Warning flags an authoring smell on one line. Warnings are advisory; the
// compiler already rejected anything that would break traversal.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Lint crawls a compiled conversation and reports lines the compiler accepts
// but authors rarely mean: lines no path from the start reaches, lines that
// strand the cursor without an end flag, and choices traversal will never
// honor. Warnings come back in line input order.
func Lint(c *conversation.Conversation) []Warning {
	reachable := crawl(c)

	var warnings []Warning
	for _, id := range c.IDs() {
		node, _ := c.Node(id)

		if !reachable[id] {
			warnings = append(warnings, Warning{
				Line:    id,
				Message: "unreachable from the start line",
			})
		}

		if c.Out(id) == nil && !node.End {
			warnings = append(warnings, Warning{
				Line:    id,
				Message: "dead end: no next, choices or end flag",
			})
		}

		if len(node.Choices) > 0 {
			switch {
			case node.End:
				warnings = append(warnings, Warning{
					Line:    id,
					Message: "choices are suppressed by the end flag",
				})
			case node.Kind != conversation.KindChoice:
				warnings = append(warnings, Warning{
					Line:    id,
					Message: "choices are shadowed by the next link",
				})
			}
		}
	}

	return warnings
}

// crawl walks the graph breadth-first from the start line and marks every
// line a player could land on without jumping.
func crawl(c *conversation.Conversation) map[int]bool {
	visited := make(map[int]bool, c.NodeCount())
	queue := []int{c.StartID()}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if visited[id] {
			continue
		}
		visited[id] = true

		for _, target := range c.Out(id) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	return visited
}
