// Package dashboard serves an enhanced merge request list over HTTP and
// runs the injected actions on behalf of the browser.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vilaca/mr-enhancer/internal/actions"
	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
	"github.com/vilaca/mr-enhancer/internal/notify"
	"github.com/vilaca/mr-enhancer/internal/page"
	"github.com/vilaca/mr-enhancer/internal/service"
)

// maxActionBody bounds the size of an action request.
const maxActionBody = 4 << 10

// SessionRunner runs the enhancement pipeline (Dependency Inversion Principle).
type SessionRunner interface {
	Run(ctx context.Context, src page.Source) (*service.Session, error)
}

// ActionRequest is the body of POST /api/actions.
type ActionRequest struct {
	IID  string `json:"iid"`
	Kind string `json:"kind"`
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	Renderer Renderer
	Logger   zerolog.Logger
	Enhancer SessionRunner
	Source   page.Source
	// Alerts must be the notifier the enhancer was built with.
	Alerts *notify.Recorder
	// Clipboard must be the clipboard the enhancer was built with.
	Clipboard  *actions.MemoryClipboard
	RunTimeout time.Duration
}

// Handler handles HTTP requests for the enhanced page.
// Each handler method has a Single Responsibility (SRP).
type Handler struct {
	renderer   Renderer
	logger     zerolog.Logger
	enhancer   SessionRunner
	source     page.Source
	alerts     *notify.Recorder
	clipboard  *actions.MemoryClipboard
	runTimeout time.Duration

	// mu serializes access to the session document.
	mu      sync.Mutex
	session *service.Session
}

// NewHandler creates a new Handler with injected dependencies (Dependency Inversion Principle).
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		renderer:   cfg.Renderer,
		logger:     cfg.Logger,
		enhancer:   cfg.Enhancer,
		source:     cfg.Source,
		alerts:     cfg.Alerts,
		clipboard:  cfg.Clipboard,
		runTimeout: cfg.RunTimeout,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handlePage)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/actions", h.handleAction)
}

// handleHealth serves the health check endpoint.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.renderer.RenderHealth(w); err != nil {
		h.logger.Error().Err(err).Msg("failed to render health")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// handlePage runs a fresh page view and serves the enhanced document.
// The new session replaces the previous one, so earlier triggers stop working.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session, err := h.enhancer.Run(ctx, h.source)
	alerts := h.alerts.Drain()
	if err != nil {
		h.logger.Error().Err(err).Msg("page view failed")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(runStatus(err))
		if rerr := h.renderer.RenderUnavailable(w, err, alerts); rerr != nil {
			h.logger.Error().Err(rerr).Msg("failed to render error page")
		}
		return
	}
	h.session = session

	document, err := session.Render()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to serialize page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := h.renderer.RenderPage(w, document); err != nil {
		h.logger.Error().Err(err).Msg("failed to render page")
	}
}

// handleAction clicks a trigger of the current session.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&req); err != nil {
		h.writeResult(w, http.StatusBadRequest, ActionResult{Error: "invalid request body: " + err.Error()})
		return
	}
	action, branch, err := actions.ParseKind(req.Kind)
	if err != nil || req.IID == "" {
		if err == nil {
			err = errors.New("missing iid")
		}
		h.writeResult(w, http.StatusBadRequest, ActionResult{Error: err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		h.writeResult(w, http.StatusConflict, ActionResult{Error: "no enhanced page loaded"})
		return
	}

	logger := h.logger.With().Str("iid", req.IID).Str("kind", req.Kind).Logger()
	err = h.session.Act(r.Context(), req.IID, action, branch)

	result := ActionResult{OK: err == nil, Alerts: h.alerts.Drain()}
	if text, ok := h.clipboard.Take(); ok {
		result.Clipboard = &text
	}
	if state, ok := h.session.State(req.IID); ok {
		result.Title = state.Title
		result.WorkInProgress = &state.WorkInProgress
	}
	if err != nil {
		logger.Warn().Err(err).Msg("action failed")
		result.Error = err.Error()
		h.writeResult(w, actionStatus(err), result)
		return
	}

	logger.Info().Msg("action completed")
	h.writeResult(w, http.StatusOK, result)
}

func (h *Handler) writeResult(w http.ResponseWriter, status int, result ActionResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := h.renderer.RenderActionResult(w, result); err != nil {
		h.logger.Error().Err(err).Msg("failed to render action result")
	}
}

// runStatus maps a failed page view to an HTTP status.
func runStatus(err error) int {
	switch {
	case errors.Is(err, enherrors.ErrInitialization):
		return http.StatusUnprocessableEntity
	case errors.Is(err, enherrors.ErrDiscoveryExhausted):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// actionStatus maps a failed action to an HTTP status.
func actionStatus(err error) int {
	switch {
	case errors.Is(err, enherrors.ErrNotBound):
		return http.StatusNotFound
	case enherrors.IsAuth(err):
		return http.StatusForbidden
	case enherrors.IsTransport(err), enherrors.IsDecode(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
