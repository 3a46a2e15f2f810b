package http

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/session"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Engine is the surface the server drives. The root facade satisfies it.
type Engine interface {
	ports.Engine
	Watch(ctx context.Context) (<-chan string, error)
}

// Server exposes an Engine and a SessionStore over REST plus SSE. Sessions
// are server-side cursors: each move loads the session, replays it onto a
// fresh compile of its script and persists the new position, so edits to
// script documents take effect on the next request.
type Server struct {
	engine   Engine
	store    ports.SessionStore
	locker   ports.DistributedLocker
	sessions *session.Manager
	streams  *StreamManager
	metrics  *Metrics
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStore selects the session store. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLocker enables distributed session locking, for deployments where
// several server replicas share one store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Server) {
		s.locker = locker
	}
}

// WithLogger sets the server logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry registers the server metrics on the given registry instead of
// a private one.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = NewMetrics(reg)
	}
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine:  engine,
		streams: NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(prometheus.NewRegistry())
	}
	s.streams.logger = s.logger

	managerOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(s.locker))
	}
	s.sessions = session.NewManager(s.store, managerOpts...)

	r := chi.NewRouter()

	r.Get("/openapi.yaml", s.openAPIDocument)
	r.Get("/swagger", s.swaggerUI)
	r.Get("/healthz", s.health)
	r.Get("/info", s.info)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/scripts", s.listScripts)
	r.Get("/scripts/{name}", s.getScript)
	r.Get("/scripts/{name}/graph", s.getGraph)

	r.Get("/sessions", s.listSessions)
	r.Post("/sessions", s.startSession)
	r.Get("/sessions/{id}", s.getSession)
	r.Delete("/sessions/{id}", s.deleteSession)
	r.Post("/sessions/{id}/advance", s.advance)
	r.Post("/sessions/{id}/jump", s.jump)
	r.Get("/sessions/{id}/events", s.sessionEvents)

	r.Get("/events", s.scriptEvents)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Parley API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Wire types. The document under /openapi.yaml describes the same shapes;
// the tests cross-check the two.
type (
	// ScriptList is the GET /scripts response.
	ScriptList struct {
		Scripts []string `json:"scripts"`
	}

	// ScriptDetail is the GET /scripts/{name} response.
	ScriptDetail struct {
		Name  string `json:"name"`
		Start int    `json:"start"`
		Lines int    `json:"lines"`
		Edges int    `json:"edges"`
	}

	// SessionList is the GET /sessions response.
	SessionList struct {
		Sessions []string `json:"sessions"`
	}

	// StartSessionRequest is the POST /sessions body. An empty SessionID
	// asks the server to generate one.
	StartSessionRequest struct {
		Script    string `json:"script"`
		SessionID string `json:"session_id,omitempty"`
	}

	// JumpRequest is the POST /sessions/{id}/jump body.
	JumpRequest struct {
		Line int `json:"line"`
	}

	// ErrorResponse carries a failure message.
	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// errStaleSession marks a stored session whose line no longer exists in the
// current script document.
var errStaleSession = errors.New("session is stale")

// errBadScript marks a script document that failed to parse or compile.
var errBadScript = errors.New("script is not playable")

func (s *Server) openAPIDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiSpec)
}

func (s *Server) swaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(swaggerHTML))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "parley-http",
		"version":     strings.TrimSpace(parley.Version),
		"api_version": apiVersion(),
	})
}

func (s *Server) listScripts(w http.ResponseWriter, r *http.Request) {
	names, err := s.engine.Scripts()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to list scripts: %w", err))
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, ScriptList{Scripts: names})
}

func (s *Server) getScript(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	conv, err := s.openScript(name)
	if err != nil {
		s.writeError(w, openStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, ScriptDetail{
		Name:  name,
		Start: conv.StartID(),
		Lines: conv.NodeCount(),
		Edges: conv.EdgeCount(),
	})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	conv, err := s.openScript(name)
	if err != nil {
		s.writeError(w, openStatus(err), err)
		return
	}

	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session_id"); id != "" {
		if err := checkSessionID(id); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		sess, err := s.sessions.Load(r.Context(), id)
		if err != nil {
			s.writeError(w, sessionStatus(err), err)
			return
		}
		line := sess.Line
		overlay = &graph.Overlay{VisitedLines: sess.History, Current: &line}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(conv, overlay))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to list sessions: %w", err))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, SessionList{Sessions: ids})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Script == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("script is required"))
		return
	}

	id := req.SessionID
	if id == "" {
		id = newSessionID()
	} else if err := checkSessionID(id); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	conv, err := s.openScript(req.Script)
	if err != nil {
		s.writeError(w, openStatus(err), err)
		return
	}

	sess, err := s.sessions.LoadOrStart(r.Context(), id, req.Script, conv)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sess.Script != req.Script {
		s.writeError(w, http.StatusConflict,
			fmt.Errorf("session %s belongs to script %q, not %q", id, sess.Script, req.Script))
		return
	}
	if err := sess.Restore(conv); err != nil {
		s.writeError(w, http.StatusConflict,
			fmt.Errorf("%w: session %s sits on line %d, which script %q no longer has", errStaleSession, id, sess.Line, sess.Script))
		return
	}

	s.metrics.SessionsStarted.Inc()
	s.logger.Info("session started", "session_id", id, "script", req.Script, "line", sess.Line)
	s.writeView(w, http.StatusCreated, id, sess.Script, conv)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := checkSessionID(id); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, sessionStatus(err), err)
		return
	}

	conv, err := s.openScript(sess.Script)
	if err != nil {
		s.writeError(w, openStatus(err), err)
		return
	}
	if err := sess.Restore(conv); err != nil {
		s.writeError(w, http.StatusConflict,
			fmt.Errorf("%w: session %s sits on line %d, which script %q no longer has", errStaleSession, id, sess.Line, sess.Script))
		return
	}

	s.writeView(w, http.StatusOK, id, sess.Script, conv)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := checkSessionID(id); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.sessions.Load(r.Context(), id); err != nil {
		s.writeError(w, sessionStatus(err), err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, s.metrics.Advances, func(ctx context.Context, c *conversation.Conversation) error {
		return s.engine.Advance(ctx, c)
	})
}

func (s *Server) jump(w http.ResponseWriter, r *http.Request) {
	var req JumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.move(w, r, s.metrics.Jumps, func(ctx context.Context, c *conversation.Conversation) error {
		return s.engine.Jump(ctx, c, req.Line)
	})
}

// move applies one cursor move to a session: load, replay onto a fresh
// compile of the script, step, persist. The session lock is held for the
// whole sequence so concurrent moves cannot interleave.
func (s *Server) move(w http.ResponseWriter, r *http.Request, moved prometheus.Counter, step func(context.Context, *conversation.Conversation) error) {
	id := chi.URLParam(r, "id")
	if err := checkSessionID(id); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var view runner.View
	err := s.sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		sess, err := s.sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}

		conv, err := s.openScript(sess.Script)
		if err != nil {
			return err
		}
		if err := sess.Restore(conv); err != nil {
			return fmt.Errorf("%w: session %s sits on line %d, which script %q no longer has", errStaleSession, id, sess.Line, sess.Script)
		}

		if err := step(ctx, conv); err != nil {
			return err
		}

		sess.Track(conv)
		if err := s.sessions.Store().Save(ctx, id, sess); err != nil {
			return fmt.Errorf("failed to persist session %s: %w", id, err)
		}

		view = runner.NewView(conv)
		view.SessionID = id
		view.Script = sess.Script
		return nil
	})
	if err != nil {
		s.metrics.TraversalErrors.WithLabelValues(errorReason(err)).Inc()
		s.writeError(w, moveStatus(err), err)
		return
	}

	moved.Inc()
	s.logger.Debug("session moved", "session_id", id, "line", view.Line)
	if payload, err := json.Marshal(view); err == nil {
		s.streams.Broadcast(id, string(payload))
	}
	s.writeJSON(w, http.StatusOK, view)
}

// sessionEvents streams a session's moves as SSE frames. Subscribing to a
// session that does not exist yet is allowed; frames start flowing once it
// moves.
func (s *Server) sessionEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	id := chi.URLParam(r, "id")
	s.logger.Info("sse subscriber attached", "session_id", id)

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse subscriber detached", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// scriptEvents streams script change notifications while the loader supports
// watching.
func (s *Server) scriptEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	events, err := s.engine.Watch(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("watch error: %w", err))
		return
	}

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case name, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", name)
			flusher.Flush()
		}
	}
}

func writeSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// openScript compiles the named script, timing successful compiles.
func (s *Server) openScript(name string) (*conversation.Conversation, error) {
	start := time.Now()
	conv, err := s.engine.Open(name)
	if err != nil {
		if errors.Is(err, ports.ErrScriptNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errBadScript, err)
	}
	s.metrics.CompileSeconds.Observe(time.Since(start).Seconds())
	return conv, nil
}

// openStatus maps an openScript failure: unknown names are 404, documents
// that fail to parse or compile are 422.
func openStatus(err error) int {
	if errors.Is(err, ports.ErrScriptNotFound) {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

// sessionStatus maps a session load failure.
func sessionStatus(err error) int {
	if errors.Is(err, conversation.ErrSessionNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// moveStatus maps everything a move can trip over. Illegal moves against the
// current line are conflicts; jumps to lines that do not exist and scripts
// that no longer compile are unprocessable.
func moveStatus(err error) int {
	var wrongJump *conversation.WrongJumpError
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound),
		errors.Is(err, conversation.ErrNoTalk),
		errors.Is(err, ports.ErrScriptNotFound):
		return http.StatusNotFound
	case errors.Is(err, errStaleSession),
		errors.Is(err, conversation.ErrNoNextAction),
		errors.Is(err, conversation.ErrChoicesNotHandled):
		return http.StatusConflict
	case errors.As(err, &wrongJump),
		errors.Is(err, errBadScript):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorReason labels a failed move for the traversal error counter.
func errorReason(err error) string {
	var wrongJump *conversation.WrongJumpError
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, conversation.ErrNoNextAction):
		return "no_next_action"
	case errors.Is(err, conversation.ErrChoicesNotHandled):
		return "choices_not_handled"
	case errors.As(err, &wrongJump):
		return "wrong_jump"
	case errors.Is(err, errStaleSession):
		return "stale_session"
	case errors.Is(err, errBadScript), errors.Is(err, ports.ErrScriptNotFound):
		return "bad_script"
	default:
		return "other"
	}
}

func (s *Server) writeView(w http.ResponseWriter, status int, id, script string, c *conversation.Conversation) {
	view := runner.NewView(c)
	view.SessionID = id
	view.Script = script
	s.writeJSON(w, status, view)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// newSessionID returns a random 16-character hex id.
func newSessionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("http-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// checkSessionID rejects ids that could escape file-backed stores or smuggle
// control bytes into logs.
func checkSessionID(id string) error {
	clean, err := runner.SanitizeInput(id)
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	if clean != id || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid session id: %q", id)
	}
	return nil
}

var (
	apiVersionOnce  sync.Once
	apiVersionValue = "unknown"
)

// apiVersion reads the version of the embedded OpenAPI document.
func apiVersion() string {
	apiVersionOnce.Do(func() {
		doc, err := openapi3.NewLoader().LoadFromData(openapiSpec)
		if err == nil && doc.Info != nil {
			apiVersionValue = doc.Info.Version
		}
	})
	return apiVersionValue
}
