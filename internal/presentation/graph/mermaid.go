package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/conversation"
)

// Overlay contains dynamic session state to visualize on the graph.
type Overlay struct {
	VisitedLines []int
	Current      *int
}

// Labels longer than this get cut so wide lines do not blow up the chart.
const maxLabelRunes = 40

// GenerateMermaid produces Mermaid flowchart syntax for a compiled
// conversation. It applies semantic styling:
//   - Start line: ((Circle))
//   - Choice: {Rhombus}
//   - Enter/Exit (stage direction): [/Parallelogram/]
//   - Default: [Rectangle]
//
// Choice edges carry their choice text as labels. It also applies overlay
// styles (Visited/Current) if provided.
func GenerateMermaid(c *conversation.Conversation, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, id := range c.IDs() {
		node, _ := c.Node(id)
		safeID := mermaidID(id)

		// Node shape based on kind
		opener, closer := "[", "]"

		switch {
		case id == c.StartID():
			opener, closer = "((", "))" // Circle
		case node.Kind == conversation.KindChoice:
			opener, closer = "{", "}" // Rhombus
		case node.Kind == conversation.KindEnter, node.Kind == conversation.KindExit:
			opener, closer = "[/", "/]" // Parallelogram
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, labelFor(node), closer))

		// Transitions. Out order matches choice order for choice lines, so
		// edges can be labeled positionally.
		targets := c.Out(id)
		labeled := node.Kind == conversation.KindChoice && len(node.Choices) == len(targets)
		for i, target := range targets {
			arrow := "-->"
			if labeled {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(truncate(node.Choices[i].Text)))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, mermaidID(target)))
		}
	}

	// Apply overlay styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		// Deduplicate visited lines; session history may repeat ids on loops.
		visitedSet := make(map[int]bool)
		for _, id := range overlay.VisitedLines {
			if _, ok := c.Node(id); !ok || visitedSet[id] {
				continue
			}
			visitedSet[id] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", mermaidID(id)))
		}

		if overlay.Current != nil {
			if _, ok := c.Node(*overlay.Current); ok {
				sb.WriteString(fmt.Sprintf("    class %s current;\n", mermaidID(*overlay.Current)))
			}
		}
	}

	return sb.String()
}

// labelFor renders a line the way the terminal handler would, minus the
// decoration: stage directions become "Name enters", spoken lines become
// "Name: text".
func labelFor(node conversation.Node) string {
	text := strings.TrimSpace(node.Text)
	var name string
	if node.Talker != nil {
		name = node.Talker.Name
	}

	var label string
	switch node.Kind {
	case conversation.KindEnter, conversation.KindExit:
		verb := "enters"
		if node.Kind == conversation.KindExit {
			verb = "leaves"
		}
		switch {
		case text != "":
			label = text
		case name != "":
			label = name + " " + verb
		}
	default:
		switch {
		case text != "" && name != "":
			label = name + ": " + text
		case text != "":
			label = text
		}
	}
	if label == "" {
		label = fmt.Sprintf("line %d", node.ID)
	}

	return escapeLabel(truncate(label))
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRunes {
		return s
	}
	return string(runes[:maxLabelRunes-3]) + "..."
}

// escapeLabel swaps double quotes for single ones so labels survive the
// Mermaid string syntax.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// mermaidID sanitizes a line id for Mermaid; negative ids carry a dash that
// would break the identifier.
func mermaidID(id int) string {
	return strings.ReplaceAll(fmt.Sprintf("L%d", id), "-", "_")
}
