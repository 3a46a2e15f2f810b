package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
)

// Engine is the engine surface the MCP tools drive.
type Engine interface {
	ports.Engine
}

// Server exposes a dialogue engine as an MCP server. The tools are
// stateless: callers carry the line id between calls, so one server can host
// any number of concurrent walks.
type Server struct {
	engine    Engine
	loader    ports.ScriptLoader
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server over the engine. The loader backs the
// script resources.
func NewServer(engine Engine, loader ports.ScriptLoader, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		loader:    loader,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE. It blocks until
// the context is cancelled or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping mcp server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Tool inputs and outputs. mcp-go derives the JSON schemas from these.
type (
	// ScriptList is the list_scripts result.
	ScriptList struct {
		Scripts []string `json:"scripts"`
	}

	// RenderLineInput selects a script and, optionally, a line to render.
	RenderLineInput struct {
		Script string `json:"script"`
		Line   *int   `json:"line,omitempty"`
	}

	// AdvanceInput names the line to advance from.
	AdvanceInput struct {
		Script string `json:"script"`
		Line   int    `json:"line"`
	}

	// JumpInput names the target line, and optionally the line being left.
	JumpInput struct {
		Script string `json:"script"`
		Line   *int   `json:"line,omitempty"`
		Target int    `json:"target"`
	}

	// GraphInput selects a script to chart.
	GraphInput struct {
		Script string `json:"script"`
	}
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_scripts",
		mcp.WithDescription("List the script names the engine can open."),
		mcp.WithOutputSchema[ScriptList](),
	), s.handleListScripts)

	s.mcpServer.AddTool(mcp.NewTool("render_line",
		mcp.WithDescription("Render a line of a script. Omit 'line' to render the starting line."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script name")),
		mcp.WithNumber("line", mcp.Description("Line id to render (defaults to the start)")),
		mcp.WithInputSchema[RenderLineInput](),
		mcp.WithOutputSchema[runner.View](),
	), s.handleRenderLine)

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Advance from a line along its next edge and render the line arrived at. Choice lines cannot be advanced; jump to a choice target instead."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script name")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Line id the walk is on")),
		mcp.WithInputSchema[AdvanceInput](),
		mcp.WithOutputSchema[runner.View](),
	), s.handleAdvance)

	s.mcpServer.AddTool(mcp.NewTool("jump",
		mcp.WithDescription("Jump to a line id, such as a choice target, and render it."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script name")),
		mcp.WithNumber("target", mcp.Required(), mcp.Description("Line id to jump to")),
		mcp.WithNumber("line", mcp.Description("Line id the walk is on (informational)")),
		mcp.WithInputSchema[JumpInput](),
		mcp.WithOutputSchema[runner.View](),
	), s.handleJump)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render a script as a Mermaid flowchart for introspection."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script name")),
		mcp.WithInputSchema[GraphInput](),
	), s.handleGraph)
}

func (s *Server) handleListScripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.engine.Scripts()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to list scripts", err), nil
	}
	if names == nil {
		names = []string{}
	}
	return mcp.NewToolResultStructuredOnly(ScriptList{Scripts: names}), nil
}

func (s *Server) handleRenderLine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input RenderLineInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid render_line arguments", err), nil
	}

	conv, err := s.open(input.Script)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to open script", err), nil
	}
	if input.Line != nil {
		if err := conv.JumpTo(*input.Line); err != nil {
			return mcp.NewToolResultErrorFromErr("failed to render line", err), nil
		}
	}
	return mcp.NewToolResultStructuredOnly(s.view(input.Script, conv)), nil
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input AdvanceInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid advance arguments", err), nil
	}

	conv, err := s.open(input.Script)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to open script", err), nil
	}
	if err := conv.JumpTo(input.Line); err != nil {
		return mcp.NewToolResultErrorFromErr("failed to position cursor", err), nil
	}
	if err := s.engine.Advance(ctx, conv); err != nil {
		return mcp.NewToolResultErrorFromErr("advance failed", err), nil
	}

	s.logger.Debug("mcp advance", "script", input.Script, "from", input.Line, "to", conv.CurrentID())
	return mcp.NewToolResultStructuredOnly(s.view(input.Script, conv)), nil
}

func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input JumpInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid jump arguments", err), nil
	}

	conv, err := s.open(input.Script)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to open script", err), nil
	}
	if input.Line != nil {
		if err := conv.JumpTo(*input.Line); err != nil {
			return mcp.NewToolResultErrorFromErr("failed to position cursor", err), nil
		}
	}
	if err := s.engine.Jump(ctx, conv, input.Target); err != nil {
		return mcp.NewToolResultErrorFromErr("jump failed", err), nil
	}

	s.logger.Debug("mcp jump", "script", input.Script, "to", input.Target)
	return mcp.NewToolResultStructuredOnly(s.view(input.Script, conv)), nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input GraphInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid get_graph arguments", err), nil
	}

	conv, err := s.open(input.Script)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to open script", err), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(conv, nil)), nil
}

// open compiles the named script.
func (s *Server) open(name string) (*conversation.Conversation, error) {
	if name == "" {
		return nil, errors.New("script is required")
	}
	return s.engine.Open(name)
}

// view projects the conversation's current line for tool results.
func (s *Server) view(script string, c *conversation.Conversation) runner.View {
	v := runner.NewView(c)
	v.Script = script
	return v
}

// registerResources exposes each script document the loader knew at startup.
func (s *Server) registerResources() {
	names, err := s.loader.ListScripts()
	if err != nil {
		s.logger.Warn("failed to list scripts for mcp resources", "err", err)
		return
	}

	for _, name := range names {
		uri := "parley://scripts/" + name
		s.mcpServer.AddResource(mcp.NewResource(uri, name,
			mcp.WithMIMEType("application/yaml"),
		), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw, err := s.loader.GetScript(name)
			if err != nil {
				return nil, fmt.Errorf("failed to load script %s: %w", name, err)
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "application/yaml",
					Text:     string(raw),
				},
			}, nil
		})
	}
}
