package dsl

import "github.com/aretw0/parley/pkg/script"

// LineBuilder provides a fluent API for configuring one dialogue line.
type LineBuilder struct {
	line    script.Line
	builder *Builder
}

// Talker names the speaker of this line. Lines without a talker are
// narration.
func (l *LineBuilder) Talker(name string) *LineBuilder {
	l.line.Talker = name
	return l
}

// Say sets the text of the line.
func (l *LineBuilder) Say(text string) *LineBuilder {
	l.line.Text = text
	return l
}

// Enter marks the line as a stage entrance for the named talker.
func (l *LineBuilder) Enter(name string) *LineBuilder {
	l.line.Kind = script.KindEnter
	l.line.Talker = name
	return l
}

// Exit marks the line as a stage exit for the named talker.
func (l *LineBuilder) Exit(name string) *LineBuilder {
	l.line.Kind = script.KindExit
	l.line.Talker = name
	return l
}

// Next links the line to its successor. It wins over any choices on the
// same line.
func (l *LineBuilder) Next(target int) *LineBuilder {
	l.line.Next = &target
	return l
}

// Choice adds a player-facing branch to the target line.
func (l *LineBuilder) Choice(text string, target int) *LineBuilder {
	l.line.Choices = append(l.line.Choices, script.Choice{
		Text: text,
		Next: target,
	})
	return l
}

// Start marks the line as the entry point of the script. Exactly one line
// must carry it.
func (l *LineBuilder) Start() *LineBuilder {
	l.line.Start = true
	return l
}

// End marks the line as terminal. Its links are kept in the document but
// get no edges.
func (l *LineBuilder) End() *LineBuilder {
	l.line.End = true
	return l
}

// Build returns the underlying script.Line.
// This is primarily used by the Builder, but exposed for advanced usage.
func (l *LineBuilder) Build() script.Line {
	return l.line
}
