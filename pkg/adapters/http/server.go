package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techwithparamesh/agentflow/internal/logging"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/editor"
	"github.com/techwithparamesh/agentflow/pkg/expression"
	"github.com/techwithparamesh/agentflow/pkg/schema"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Workspace is the editing core the server exposes. agentflow.Workspace satisfies it.
type Workspace interface {
	Registry() schema.Registry
	Create(ctx context.Context, name string) (*editor.Manager, error)
	Open(ctx context.Context, id string) (*editor.Manager, error)
	Put(ctx context.Context, flow *domain.Flow) (*editor.Manager, error)
	Save(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Validate(flow *domain.Flow) validation.WorkflowValidationResult
	Panel(flow *domain.Flow, nodeID string) (validation.NodeView, error)
	Activate(ctx context.Context, id string) (validation.WorkflowValidationResult, error)
	Resolve(template string, data *expression.DataContext) (expression.Result, error)
}

// Server serves the editor API.
type Server struct {
	Workspace Workspace
	Streams   *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewHandler creates a new HTTP handler for the workspace.
func NewHandler(ws Workspace, opts ...Option) http.Handler {
	server := &Server{Workspace: ws}
	for _, opt := range opts {
		opt(server)
	}
	server.logger = logging.OrNop(server.logger)
	server.Streams = NewStreamManager(server.logger)

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/apps", server.SearchApps)
	r.Post("/resolve", server.Resolve)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	r.Route("/flows", func(r chi.Router) {
		r.Post("/", server.CreateFlow)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", server.GetFlow)
			r.Put("/", server.PutFlow)
			r.Delete("/", server.DeleteFlow)
			r.Get("/validation", server.GetValidation)
			r.Get("/events", server.SubscribeEvents)
			r.Post("/undo", server.Undo)
			r.Post("/redo", server.Redo)
			r.Post("/activate", server.Activate)
			r.Get("/nodes/{nodeID}/panel", server.GetPanel)
			r.Put("/nodes/{nodeID}/config/{key}", server.PutConfig)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchApps handles GET /apps?q=.
func (s *Server) SearchApps(w http.ResponseWriter, r *http.Request) {
	apps := s.Workspace.Registry().SearchApps(r.URL.Query().Get("q"))
	if apps == nil {
		apps = []schema.AppSchema{}
	}
	s.writeJSON(w, http.StatusOK, apps)
}

type createFlowRequest struct {
	Name string `json:"name"`
}

// CreateFlow handles POST /flows.
func (s *Server) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var body createFlowRequest
	if !s.decode(w, r, &body) {
		return
	}
	m, err := s.Workspace.Create(r.Context(), body.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, m.Flow())
}

// GetFlow handles GET /flows/{id}.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	m, ok := s.open(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, m.Flow())
}

// PutFlow handles PUT /flows/{id}. The path id wins over the body id.
func (s *Server) PutFlow(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return
	}
	flow, err := domain.DecodeFlow(data)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	id := chi.URLParam(r, "id")
	flow.ID = id

	var before *domain.Flow
	if prev, err := s.Workspace.Open(r.Context(), id); err == nil {
		before = prev.Flow()
	}
	m, err := s.Workspace.Put(r.Context(), flow)
	if err != nil {
		s.writeError(w, err)
		return
	}
	after := m.Flow()
	s.broadcast(before, after)
	s.writeJSON(w, http.StatusOK, after)
}

// DeleteFlow handles DELETE /flows/{id}.
func (s *Server) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetValidation handles GET /flows/{id}/validation.
func (s *Server) GetValidation(w http.ResponseWriter, r *http.Request) {
	m, ok := s.open(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.Workspace.Validate(m.Flow()))
}

// GetPanel handles GET /flows/{id}/nodes/{nodeID}/panel.
func (s *Server) GetPanel(w http.ResponseWriter, r *http.Request) {
	m, ok := s.open(w, r)
	if !ok {
		return
	}
	view, err := s.Workspace.Panel(m.Flow(), chi.URLParam(r, "nodeID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

type configRequest struct {
	Value any `json:"value"`
}

// PutConfig handles PUT /flows/{id}/nodes/{nodeID}/config/{key}.
// A null value deletes the key. The response is the refreshed panel.
func (s *Server) PutConfig(w http.ResponseWriter, r *http.Request) {
	m, ok := s.open(w, r)
	if !ok {
		return
	}
	var body configRequest
	if !s.decode(w, r, &body) {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")

	before := m.Flow()
	if err := m.UpdateConfig(nodeID, chi.URLParam(r, "key"), body.Value); err != nil {
		s.writeError(w, err)
		return
	}
	after, ok := s.save(w, r, m)
	if !ok {
		return
	}
	s.broadcast(before, after)

	view, err := s.Workspace.Panel(after, nodeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// Undo handles POST /flows/{id}/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, (*editor.Manager).Undo, "nothing to undo")
}

// Redo handles POST /flows/{id}/redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, (*editor.Manager).Redo, "nothing to redo")
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, fn func(*editor.Manager) bool, empty string) {
	m, ok := s.open(w, r)
	if !ok {
		return
	}
	before := m.Flow()
	if !fn(m) {
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: empty})
		return
	}
	after, ok := s.save(w, r, m)
	if !ok {
		return
	}
	s.broadcast(before, after)
	s.writeJSON(w, http.StatusOK, after)
}

// Activate handles POST /flows/{id}/activate. A flow that cannot execute
// is answered with 409 and its validation result.
func (s *Server) Activate(w http.ResponseWriter, r *http.Request) {
	m, ok := s.open(w, r)
	if !ok {
		return
	}
	before := m.Flow()
	res, err := s.Workspace.Activate(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotExecutable) {
		s.writeJSON(w, http.StatusConflict, res)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(before, m.Flow())
	s.writeJSON(w, http.StatusOK, res)
}

type resolveRequest struct {
	Template string                  `json:"template"`
	Context  *expression.DataContext `json:"context"`
}

type resolveResponse struct {
	Value      any      `json:"value"`
	Resolved   bool     `json:"resolved"`
	Unresolved []string `json:"unresolved"`
}

// Resolve handles POST /resolve.
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	var body resolveRequest
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.Workspace.Resolve(body.Template, body.Context)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := resolveResponse{Value: res.Value, Resolved: res.Resolved(), Unresolved: res.Unresolved}
	if expression.IsUnresolved(resp.Value) {
		resp.Value = nil
	}
	if resp.Unresolved == nil {
		resp.Unresolved = []string{}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles GET /flows/{id}/events (SSE). Every change made
// through this server is pushed as a domain.FlowDiff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	if _, ok := s.open(w, r); !ok {
		return
	}
	flowID := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(flowID)
	defer cancel()
	s.logger.Info("SSE client subscribed", "flow_id", flowID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "flow_id", flowID)
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

// -- Helpers --

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) (*editor.Manager, bool) {
	m, err := s.Workspace.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return m, true
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, m *editor.Manager) (*domain.Flow, bool) {
	flow := m.Flow()
	if err := s.Workspace.Save(r.Context(), flow.ID); err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return flow, true
}

func (s *Server) broadcast(before, after *domain.Flow) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to encode flow diff", "flow_id", after.ID, "error", err)
		return
	}
	s.Streams.Broadcast(after.ID, string(data))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFlowNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSchemaNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidConnection), errors.Is(err, domain.ErrInvalidNode),
		errors.Is(err, domain.ErrDuplicateNode), errors.Is(err, expression.ErrSyntax):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotExecutable):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
