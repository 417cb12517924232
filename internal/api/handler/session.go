package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codepairhq/codepair/internal/api/middleware"
	"github.com/codepairhq/codepair/internal/api/response"
	"github.com/codepairhq/codepair/internal/domain"
	"github.com/codepairhq/codepair/internal/service"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func sessionID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// Create creates a new session with the caller as host
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.SessionCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	session, err := h.sessionService.Create(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, map[string]any{"session": session})
}

// ListActive returns active sessions, newest first
func (h *SessionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionService.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{"sessions": sessions})
}

// ListMyRecent returns the caller's completed sessions, newest first
func (h *SessionHandler) ListMyRecent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessions, err := h.sessionService.ListMyRecent(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{"sessions": sessions})
}

// Get returns a session by ID
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		response.NotFound(w, domain.ErrSessionNotFound.Error())
		return
	}

	session, err := h.sessionService.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{"session": session})
}

// Join fills the session's participant slot with the caller
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := sessionID(r)
	if !ok {
		response.NotFound(w, domain.ErrSessionNotFound.Error())
		return
	}

	session, err := h.sessionService.Join(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{"session": session})
}

// Leave vacates the participant slot
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := sessionID(r)
	if !ok {
		response.NotFound(w, domain.ErrSessionNotFound.Error())
		return
	}

	session, err := h.sessionService.Leave(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{"session": session})
}

// End completes the session (host only)
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := sessionID(r)
	if !ok {
		response.NotFound(w, domain.ErrSessionNotFound.Error())
		return
	}

	session, err := h.sessionService.End(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{"session": session})
}
