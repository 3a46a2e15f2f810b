package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/parley/pkg/conversation"
	"golang.org/x/term"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	source      io.Reader
	interactive bool // true when reading a terminal, where EOF may just mean an interrupted read
	Reader      *bufio.Reader
	Writer      io.Writer
	Renderer    ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		source: r,
		Writer: w,
	}

	h.interactive = isTerminal(r)
	h.Reader = bufio.NewReader(h.source)

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text, err: nil}
		}

		if err != nil {
			if err == io.EOF {
				if h.interactive {
					// On a terminal, EOF can mean a signal interrupted the
					// read while the stream stays valid. Pass the EOF so the
					// consumer knows this read failed, but keep the channel
					// open for reads after signal handling.
					h.inputChan <- inputResult{text: "", err: io.EOF}
					// Prevent a busy loop when EOFs arrive rapidly (e.g.
					// holding Ctrl+C).
					time.Sleep(50 * time.Millisecond)
					continue
				}
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{text: "", err: err}
			// Backoff so a persistently failing reader cannot spike the CPU.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, view View) (bool, error) {
	line := formatLine(view)
	if line != "" {
		if h.Renderer != nil {
			if rendered, err := h.Renderer(line); err == nil {
				line = rendered
			}
		}
		fmt.Fprintln(h.Writer, strings.TrimSpace(line))
	}

	for i, choice := range view.Choices {
		fmt.Fprintf(h.Writer, "  %d) %s\n", i+1, choice.Text)
	}

	return !view.End, nil
}

// formatLine renders one dialogue line as plain text. Enter and exit lines
// become stage directions; spoken lines without a talker are voiced by the
// Narrator.
func formatLine(view View) string {
	name := ""
	if len(view.Talkers) > 0 {
		name = view.Talkers[0]
	}

	switch view.Kind {
	case conversation.KindEnter:
		if view.Text != "" {
			return fmt.Sprintf("* %s *", view.Text)
		}
		return fmt.Sprintf("* %s enters *", name)
	case conversation.KindExit:
		if view.Text != "" {
			return fmt.Sprintf("* %s *", view.Text)
		}
		return fmt.Sprintf("* %s leaves *", name)
	default:
		if name == "" && view.Kind == conversation.KindTalk {
			name = "Narrator"
		}
		if name != "" && view.Text != "" {
			return fmt.Sprintf("%s: %s", name, view.Text)
		}
		return view.Text
	}
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	// Ensure the pump is running
	h.initPump()

	for {
		// Only show the prompt if the context is not yet done
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			// Don't print anything here, just exit silently
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			text := strings.TrimSpace(res.text)

			clean, err := SanitizeInput(text)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "[system] %s\n", msg)
	return nil
}

// isTerminal reports whether the reader is an interactive terminal, which
// changes how the pump treats EOF.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
