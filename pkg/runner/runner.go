package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
)

// Runner drives one conversation through an engine using pluggable IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs
// JSON) and optionally persists the session after every move.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input and
	// Output is created on first use.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for durable sessions.
	// If nil, or SessionID is empty, the playthrough is ephemeral.
	Store ports.SessionStore

	// SessionID names the durable session to resume or create.
	SessionID string

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms dialogue text before outputting it.
// This allows TUI rendering (markdown to ANSI) without coupling the runner.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run opens the named script and walks it until the conversation reaches a
// terminal line, the user quits, input runs dry, or the parent context is
// cancelled. Traversal errors are reported through the handler and the loop
// continues; IO and persistence errors abort the run.
func (r *Runner) Run(parent context.Context, engine ports.Engine, script string) error {
	handler := r.resolveHandler()

	signals := NewSignalManager(parent)
	defer signals.Stop()

	conv, err := engine.Open(script)
	if err != nil {
		return err
	}

	sess, mgr, err := r.resolveSession(signals.Context(), script, conv)
	if err != nil {
		return err
	}

	lastRendered := 0
	rendered := false

	for {
		ctx := signals.Context()

		view := NewView(conv)
		view.SessionID = r.SessionID
		view.Script = script

		// Render only lines the user has not just seen, so a rejected
		// command does not repeat the current line.
		needsInput := !view.End
		if !rendered || view.Line != lastRendered {
			needsInput, err = handler.Output(ctx, view)
			if err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			rendered = true
			lastRendered = view.Line
		}

		if !needsInput {
			break
		}

		var raw string
		if r.Headless && view.CanAdvance {
			// No one to wait for; walk linear lines automatically.
			raw = ""
		} else {
			raw, err = r.readInput(ctx, handler, signals)
			if err != nil {
				if err == io.EOF {
					break
				}
				return err
			}
		}

		cmd, perr := parseCommand(raw, view)
		if perr != nil {
			if err := handler.SystemOutput(ctx, perr.Error()); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}
		if cmd.kind == cmdQuit {
			break
		}

		switch cmd.kind {
		case cmdAdvance:
			err = engine.Advance(ctx, conv)
		case cmdJump:
			err = engine.Jump(ctx, conv, cmd.target)
		}
		if err != nil {
			// Traversal errors are part of the dialogue, not fatal. The
			// cursor has not moved; report and read the next command.
			if err := handler.SystemOutput(ctx, err.Error()); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if sess != nil {
			sess.Track(conv)
			if err := mgr.Save(ctx, r.SessionID, sess); err != nil {
				return fmt.Errorf("critical persistence error: %w", err)
			}
			r.Logger.Debug("session saved", "session_id", r.SessionID, "line", sess.Line)
		}
	}

	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	// Memoize to prevent creating new pumps on subsequent Run() calls
	r.Handler = th
	return th
}

// resolveSession loads or creates the durable session when persistence is
// configured, and positions the cursor on its line. Ephemeral runs return
// nils.
func (r *Runner) resolveSession(ctx context.Context, script string, conv *conversation.Conversation) (*conversation.Session, *session.Manager, error) {
	if r.Store == nil || r.SessionID == "" {
		return nil, nil, nil
	}

	mgr := session.NewManager(r.Store, session.WithLogger(r.Logger))
	sess, err := mgr.LoadOrStart(ctx, r.SessionID, script, conv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
	}
	if sess.Script != script {
		return nil, nil, fmt.Errorf("session %s belongs to script %q, not %q", r.SessionID, sess.Script, script)
	}
	if err := sess.Restore(conv); err != nil {
		return nil, nil, fmt.Errorf("failed to restore session %s: %w", r.SessionID, err)
	}
	return sess, mgr, nil
}

// readInput reads one command, translating signal cancellation into a quiet
// exit. Sessions are saved after every move, so there is nothing to flush.
func (r *Runner) readInput(ctx context.Context, handler IOHandler, signals *SignalManager) (string, error) {
	val, err := handler.Input(ctx)
	if err == nil {
		return val, nil
	}

	// The read may have failed because a signal arrived just before the
	// context noticed it.
	signals.CheckRace()

	if ctx.Err() != nil {
		r.Logger.Debug("input interrupted", "err", ctx.Err())
		return "", io.EOF
	}

	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("input error: %w", err)
}

type commandKind int

const (
	cmdAdvance commandKind = iota
	cmdJump
	cmdQuit
)

type command struct {
	kind   commandKind
	target int
}

// parseCommand maps raw user input onto a traversal command. A bare number
// picks one of the current choices by position; explicit line ids go
// through "jump N".
func parseCommand(raw string, view View) (command, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch s {
	case "", "next", "n":
		return command{kind: cmdAdvance}, nil
	case "exit", "quit", "q":
		return command{kind: cmdQuit}, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(view.Choices) {
			return command{}, fmt.Errorf("no choice %d here", n)
		}
		return command{kind: cmdJump, target: view.Choices[n-1].Next}, nil
	}

	if rest, ok := strings.CutPrefix(s, "jump "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return command{}, fmt.Errorf("jump needs a line id, got %q", strings.TrimSpace(rest))
		}
		return command{kind: cmdJump, target: n}, nil
	}

	return command{}, fmt.Errorf("unrecognized command %q", raw)
}
