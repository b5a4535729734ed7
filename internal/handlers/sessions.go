package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jwebster45206/plaidlibs/internal/metrics"
	"github.com/jwebster45206/plaidlibs/internal/middleware"
	"github.com/jwebster45206/plaidlibs/internal/services"
	"github.com/jwebster45206/plaidlibs/internal/session"
	"github.com/jwebster45206/plaidlibs/pkg/engine"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

// DefaultGenerationTimeout bounds one generation call.
const DefaultGenerationTimeout = 60 * time.Second

type CreateSessionRequest struct {
	Workflow string `json:"workflow"`
	Narrator string `json:"narrator,omitempty"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type WorkflowRequest struct {
	Workflow string `json:"workflow"`
}

type NarratorRequest struct {
	Narrator string `json:"narrator"`
}

type RemixRequest struct {
	Option string `json:"option"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

// SessionResponse carries the session's current view. Session is only filled
// by GET, and Error mirrors the view's error on 4xx and 5xx replies.
type SessionResponse struct {
	ID      uuid.UUID      `json:"id"`
	View    engine.View    `json:"view"`
	Session *state.Session `json:"session,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type SessionListResponse struct {
	Sessions []uuid.UUID `json:"sessions"`
}

// Lister enumerates live sessions. pkg/storage.Storage implements it.
type Lister interface {
	ListSessions(ctx context.Context) ([]uuid.UUID, error)
}

// SessionHandler serves the /v1/sessions API.
type SessionHandler struct {
	engine   *engine.Engine
	sessions *session.Manager
	lister   Lister
	llm      services.LLMService
	images   services.ImageGenerator
	metrics  *metrics.Metrics
	timeout  time.Duration
	logger   *slog.Logger
}

type SessionOption func(*SessionHandler)

// WithImageGenerator enables image generation for visual workflows.
func WithImageGenerator(g services.ImageGenerator) SessionOption {
	return func(h *SessionHandler) { h.images = g }
}

func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(h *SessionHandler) { h.metrics = m }
}

func WithGenerationTimeout(d time.Duration) SessionOption {
	return func(h *SessionHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLister enables GET /v1/sessions.
func WithLister(l Lister) SessionOption {
	return func(h *SessionHandler) { h.lister = l }
}

func NewSessionHandler(eng *engine.Engine, sessions *session.Manager, llm services.LLMService, logger *slog.Logger, opts ...SessionOption) *SessionHandler {
	h := &SessionHandler{
		engine:   eng,
		sessions: sessions,
		llm:      llm,
		timeout:  DefaultGenerationTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the session endpoints on r.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.delete)
		r.Post("/answer", h.answer)
		r.Post("/workflow", h.switchWorkflow)
		r.Post("/narrator", h.setNarrator)
		r.Post("/restart", h.restart)
		r.Post("/generate", h.generate)
		r.Post("/remix", h.remix)
		r.Post("/chat", h.chat)
		r.Post("/image", h.uploadImage)
		r.Get("/download", h.download)
	})
}

func (h *SessionHandler) log(r *http.Request) *slog.Logger {
	return middleware.LoggerFrom(r.Context(), h.logger)
}

func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		writeError(w, h.log(r), http.StatusNotImplemented, "session listing is not available")
		return
	}
	ids, err := h.lister.ListSessions(r.Context())
	if err != nil {
		h.log(r).Error("Failed to list sessions", "error", err)
		writeError(w, h.log(r), http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	writeJSON(w, h.log(r), http.StatusOK, SessionListResponse{Sessions: ids})
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	var req CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with 'workflow' field.")
		return
	}
	if req.Workflow == "" {
		req.Workflow = workflow.LibAte
	}

	s := state.NewSession()
	if req.Narrator != "" {
		if err := h.engine.SetNarrator(s, req.Narrator); err != nil {
			writeError(w, log, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := h.engine.Start(s, req.Workflow); err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sessions.Create(r.Context(), s); err != nil {
		log.Error("Failed to create session", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to create session")
		return
	}
	log.Info("Session created", "session_id", s.ID, "workflow", s.Workflow, "narrator", s.Narrator)
	writeJSON(w, log, http.StatusCreated, SessionResponse{ID: s.ID, View: h.engine.Render(s)})
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	s, err := h.sessions.Load(r.Context(), id)
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, h.log(r), http.StatusOK, SessionResponse{ID: s.ID, View: h.engine.Render(s), Session: s})
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if _, err := h.sessions.Load(r.Context(), id); err != nil {
		h.fail(w, r, nil, err)
		return
	}
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.fail(w, r, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) answer(w http.ResponseWriter, r *http.Request) {
	var body AnswerRequest
	h.mutate(w, r, &body, func(s *state.Session) (*engine.Request, error) {
		req, err := h.engine.Submit(s, body.Answer)
		h.metrics.Answer(s.Workflow, answerOutcome(err))
		return req, err
	})
}

func (h *SessionHandler) switchWorkflow(w http.ResponseWriter, r *http.Request) {
	var body WorkflowRequest
	h.mutate(w, r, &body, func(s *state.Session) (*engine.Request, error) {
		return nil, h.engine.Start(s, body.Workflow)
	})
}

func (h *SessionHandler) setNarrator(w http.ResponseWriter, r *http.Request) {
	var body NarratorRequest
	h.mutate(w, r, &body, func(s *state.Session) (*engine.Request, error) {
		return nil, h.engine.SetNarrator(s, body.Narrator)
	})
}

func (h *SessionHandler) restart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, func(s *state.Session) (*engine.Request, error) {
		return nil, h.engine.Restart(s)
	})
}

func (h *SessionHandler) generate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, func(s *state.Session) (*engine.Request, error) {
		return h.engine.Pending(s)
	})
}

func (h *SessionHandler) remix(w http.ResponseWriter, r *http.Request) {
	var body RemixRequest
	h.mutate(w, r, &body, func(s *state.Session) (*engine.Request, error) {
		return h.engine.Remix(s, body.Option)
	})
}

func (h *SessionHandler) chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	h.mutate(w, r, &body, func(s *state.Session) (*engine.Request, error) {
		if s.Workflow != workflow.PlaidChat {
			return nil, errNotChat
		}
		return h.engine.ChatTurn(s, body.Message)
	})
}

var errNotChat = errors.New("chat is only available in the plaidchat workflow")

// mutate decodes body, applies fn to the session under its lock and runs any
// generation fn asks for before replying with the resulting view.
func (h *SessionHandler) mutate(w http.ResponseWriter, r *http.Request, body any, fn func(*state.Session) (*engine.Request, error)) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if body != nil {
		if err := decodeBody(r, body); err != nil {
			writeError(w, h.log(r), http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	var req *engine.Request
	s, err := h.sessions.Update(r.Context(), id, func(s *state.Session) error {
		var err error
		req, err = fn(s)
		return err
	})
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	if req != nil {
		s, err = h.runGeneration(r.Context(), h.log(r), id, req)
		if err != nil {
			h.fail(w, r, s, err)
			return
		}
	}
	writeJSON(w, h.log(r), http.StatusOK, SessionResponse{ID: s.ID, View: h.engine.Render(s)})
}

func (h *SessionHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := sessionID(r)
	if err != nil {
		writeError(w, h.log(r), http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// fail maps err to a status. Recoverable errors reply with the session's view.
func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, s *state.Session, err error) {
	log := h.log(r)
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		log.Error("Session request failed", "error", err, "path", r.URL.Path)
		writeError(w, log, status, "Internal server error")
		return
	}
	if s == nil || status == http.StatusNotFound {
		writeError(w, log, status, err.Error())
		return
	}
	writeJSON(w, log, status, SessionResponse{ID: s.ID, View: h.engine.Render(s), Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrExternalGeneration):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case engine.IsValidation(err), errors.Is(err, engine.ErrNothingPending), errors.Is(err, errNotChat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func answerOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAccepted
	case engine.IsValidation(err):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
