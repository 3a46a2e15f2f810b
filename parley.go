package parley

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/script"
)

// Engine is the high-level entry point for the Parley library.
// It resolves script documents through a loader and compiles them into
// traversable conversations.
type Engine struct {
	loader ports.ScriptLoader
	hooks  conversation.Hooks
	logger *slog.Logger
	Name   string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithHooks registers observability hooks fired by Advance and Jump.
func WithHooks(hooks conversation.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom ScriptLoader, bypassing the default filesystem loader.
func WithLoader(l ports.ScriptLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Parley Engine.
// By default, it reads script documents from the given directory.
// If the WithLoader option is provided, path can be empty and the filesystem
// is skipped.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	// Apply options first to check if a loader is provided
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}

		eng.Name = filepath.Base(absPath)
		eng.loader = file.New(absPath)
	} else if path != "" {
		// With a custom loader, path serves as a descriptive label.
		eng.Name = filepath.Base(path)
	}

	// Ensure the logger is initialized so nothing downstream receives nil.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Enrich logger with the collection name if available
	if eng.Name != "" {
		eng.logger = eng.logger.With("collection", eng.Name)
	}

	return eng, nil
}

// Scripts lists the script names the loader can serve.
func (e *Engine) Scripts() ([]string, error) {
	return e.loader.ListScripts()
}

// Open fetches, parses and compiles the named script. The returned
// conversation sits on its start line, ready to traverse.
func (e *Engine) Open(name string) (*conversation.Conversation, error) {
	raw, err := e.loader.GetScript(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %q: %w", name, err)
	}

	s, err := script.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script %q: %w", name, err)
	}

	c, err := conversation.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script %q: %w", name, err)
	}

	e.logger.Debug("script compiled",
		"script", name,
		"nodes", c.NodeCount(),
		"edges", c.EdgeCount(),
	)

	return c, nil
}

// Validate compiles the named script and reports the first problem found.
func (e *Engine) Validate(name string) error {
	_, err := e.Open(name)
	return err
}

// Advance moves the conversation along its current line's next edge and
// fires the configured hooks. A nil conversation reports ErrNoTalk.
func (e *Engine) Advance(ctx context.Context, c *conversation.Conversation) error {
	if c == nil {
		return conversation.ErrNoTalk
	}

	left := c.Current()
	if err := c.Advance(); err != nil {
		return err
	}
	e.fireMoved(ctx, left, c)
	return nil
}

// Jump moves the conversation to the line with the given id and fires the
// configured hooks. A nil conversation reports ErrNoTalk.
func (e *Engine) Jump(ctx context.Context, c *conversation.Conversation, id int) error {
	if c == nil {
		return conversation.ErrNoTalk
	}

	left := c.Current()
	if err := c.JumpTo(id); err != nil {
		return err
	}
	e.fireMoved(ctx, left, c)
	return nil
}

// fireMoved emits leave/enter/choices hooks after a successful move.
func (e *Engine) fireMoved(ctx context.Context, left conversation.Node, c *conversation.Conversation) {
	if e.hooks.OnLineLeave != nil {
		e.hooks.OnLineLeave(ctx, conversation.EventFor(left))
	}
	entered := c.Current()
	if e.hooks.OnLineEnter != nil {
		e.hooks.OnLineEnter(ctx, conversation.EventFor(entered))
	}
	if e.hooks.OnChoices != nil {
		if ev, ok := conversation.ChoicesFor(entered); ok {
			e.hooks.OnChoices(ctx, ev)
		}
	}
}

// Watch returns a channel that reports script names when their documents
// change. Returns an error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying ScriptLoader used by the engine.
func (e *Engine) Loader() ports.ScriptLoader {
	return e.loader
}
