package dsl

import (
	"fmt"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/script"
)

// Builder manages the script construction. Lines keep their insertion
// order, which is the order the compiler reads them in.
type Builder struct {
	meta    *script.Metadata
	talkers []script.Talker
	lines   []*LineBuilder
	index   map[int]*LineBuilder
}

// New creates a new script builder.
func New() *Builder {
	return &Builder{
		index: make(map[int]*LineBuilder),
	}
}

// Meta sets the informational header of the script.
func (b *Builder) Meta(title, description string) *Builder {
	b.meta = &script.Metadata{
		Title:       title,
		Description: description,
	}
	return b
}

// Cast declares a talker in the script's roster. Asset may be empty.
func (b *Builder) Cast(name, asset string) *Builder {
	b.talkers = append(b.talkers, script.Talker{Name: name, Asset: asset})
	return b
}

// Line creates a new line with the given id.
// If the line already exists, it returns the existing builder.
func (b *Builder) Line(id int) *LineBuilder {
	if lb, ok := b.index[id]; ok {
		return lb
	}
	lb := &LineBuilder{
		line:    script.Line{ID: id},
		builder: b,
	}
	b.lines = append(b.lines, lb)
	b.index[id] = lb
	return lb
}

// Script assembles the authored document.
func (b *Builder) Script() script.Script {
	s := script.Script{
		Meta:    b.meta,
		Talkers: b.talkers,
	}
	for _, lb := range b.lines {
		s.Lines = append(s.Lines, lb.line)
	}
	return s
}

// Build compiles the script into a traversable conversation. Compile errors
// pass through untouched so callers can inspect them.
func (b *Builder) Build() (*conversation.Conversation, error) {
	return conversation.Compile(b.Script())
}

// Loader wraps the script in a memory loader under the given name, ready to
// hand to an engine.
func (b *Builder) Loader(name string) (*memory.Loader, error) {
	loader, err := memory.NewFromScripts(map[string]script.Script{name: b.Script()})
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
