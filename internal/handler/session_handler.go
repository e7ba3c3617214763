package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"civdraft/internal/catalog"
	"civdraft/internal/domain"
	"civdraft/internal/middleware"
	"civdraft/internal/service"
	"civdraft/pkg/errors"
	"civdraft/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// SessionHandler maps the HTTP surface onto draft service operations. It
// owns no session state; all validation beyond request decoding lives in
// the service.
type SessionHandler struct {
	drafts          *service.DraftService
	defaultMaxBans  int
	defaultPoolSize int
	logger          *logger.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(drafts *service.DraftService, defaultMaxBans, defaultPoolSize int, logger *logger.Logger) *SessionHandler {
	return &SessionHandler{
		drafts:          drafts,
		defaultMaxBans:  defaultMaxBans,
		defaultPoolSize: defaultPoolSize,
		logger:          logger,
	}
}

// RegisterRoutes mounts the session endpoints on the router. Every endpoint
// requires an authenticated participant.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions", h.ListSessions)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Post("/join", h.Join)
		r.Post("/start", h.StartVoting)
		r.Post("/votes", h.SubmitVotes)
		r.Post("/bans", h.SubmitBans)
		r.Post("/selection", h.SubmitSelection)
		r.Post("/advance", h.ForceAdvance)
		r.Get("/progress", h.Progress)
		r.Get("/results", h.Results)
	})
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.CreateSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondAppError(w, errors.NewValidationError("Invalid request body", nil))
			return
		}
	}

	maxBans := h.defaultMaxBans
	if req.MaxBans != nil {
		maxBans = *req.MaxBans
	}
	poolSize := h.defaultPoolSize
	if req.PoolSize != nil {
		poolSize = *req.PoolSize
	}

	session, err := h.drafts.CreateSession(r.Context(), participantID, maxBans, poolSize)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, session)
}

// ListSessions handles GET /api/v1/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.drafts.ListSessions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// GetSession handles GET /api/v1/sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.drafts.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /api/v1/sessions/{sessionID}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	if err := h.drafts.DeleteSession(r.Context(), chi.URLParam(r, "sessionID"), participantID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Join handles POST /api/v1/sessions/{sessionID}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	resp, err := h.drafts.Join(r.Context(), chi.URLParam(r, "sessionID"), participantID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// StartVoting handles POST /api/v1/sessions/{sessionID}/start
func (h *SessionHandler) StartVoting(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	session, err := h.drafts.StartVoting(r.Context(), chi.URLParam(r, "sessionID"), participantID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

// SubmitVotes handles POST /api/v1/sessions/{sessionID}/votes
func (h *SessionHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.SubmitVotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondAppError(w, errors.NewValidationError("Invalid request body", nil))
		return
	}

	session, err := h.drafts.SubmitVote(r.Context(), chi.URLParam(r, "sessionID"), participantID, req.Votes)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

// SubmitBans handles POST /api/v1/sessions/{sessionID}/bans
func (h *SessionHandler) SubmitBans(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.SubmitBansRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondAppError(w, errors.NewValidationError("Invalid request body", nil))
		return
	}

	session, err := h.drafts.SubmitBans(r.Context(), chi.URLParam(r, "sessionID"), participantID, req.Bans)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

// SubmitSelection handles POST /api/v1/sessions/{sessionID}/selection
func (h *SessionHandler) SubmitSelection(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.SubmitSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondAppError(w, errors.NewValidationError("Invalid request body", nil))
		return
	}

	session, err := h.drafts.SubmitSelection(r.Context(), chi.URLParam(r, "sessionID"), participantID, req.Leader)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

// ForceAdvance handles POST /api/v1/sessions/{sessionID}/advance
func (h *SessionHandler) ForceAdvance(w http.ResponseWriter, r *http.Request) {
	participantID, ok := middleware.ParticipantFromContext(r.Context())
	if !ok {
		h.respondAppError(w, errors.NewAuthenticationError("Authentication required"))
		return
	}

	var req domain.AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondAppError(w, errors.NewValidationError("Invalid request body", nil))
		return
	}

	session, err := h.drafts.ForceAdvance(r.Context(), chi.URLParam(r, "sessionID"), participantID, req.Target)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, session)
}

// Progress handles GET /api/v1/sessions/{sessionID}/progress
func (h *SessionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	report, err := h.drafts.Progress(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

// Results handles GET /api/v1/sessions/{sessionID}/results
func (h *SessionHandler) Results(w http.ResponseWriter, r *http.Request) {
	report, err := h.drafts.Results(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

// CatalogHandler serves the static leader catalog and ruleset categories.
type CatalogHandler struct{}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// RegisterRoutes mounts the catalog endpoints on the router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog/leaders", h.Leaders)
	r.Get("/catalog/categories", h.Categories)
}

// Leaders handles GET /api/v1/catalog/leaders
func (h *CatalogHandler) Leaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	json.NewEncoder(w).Encode(map[string]interface{}{"leaders": catalog.Leaders()})
}

// Categories handles GET /api/v1/catalog/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	json.NewEncoder(w).Encode(map[string]interface{}{"categories": catalog.Categories()})
}

func (h *SessionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError translates a service error into the JSON error envelope.
func (h *SessionHandler) respondError(w http.ResponseWriter, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		h.respondAppError(w, appErr)
		return
	}
	h.logger.WithError(err).Error("Unhandled error")
	h.respondAppError(w, errors.NewInternalError("Internal server error", err))
}

func (h *SessionHandler) respondAppError(w http.ResponseWriter, appErr *errors.AppError) {
	if appErr.StatusCode >= http.StatusInternalServerError {
		h.logger.WithError(appErr).Error("Request failed")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	h.respondJSON(w, appErr.StatusCode, response)
}
