package handler

import (
	"net/http"

	"github.com/codepairhq/codepair/internal/api/middleware"
	"github.com/codepairhq/codepair/internal/api/response"
	"github.com/codepairhq/codepair/internal/stream"
)

// StreamHandler issues the client-side tokens the chat/video SDK needs to
// connect as the authenticated user.
type StreamHandler struct {
	client *stream.Client
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(client *stream.Client) *StreamHandler {
	return &StreamHandler{client: client}
}

func (h *StreamHandler) userToken(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	token, err := h.client.CreateUserToken(user.ID.Hex())
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"token":    token,
		"userId":   user.ID.Hex(),
		"userName": user.Name,
		"apiKey":   h.client.APIKey(),
	})
}

// ChatToken returns a chat token for the calling user
func (h *StreamHandler) ChatToken(w http.ResponseWriter, r *http.Request) {
	h.userToken(w, r)
}

// VideoToken returns a video token for the calling user
func (h *StreamHandler) VideoToken(w http.ResponseWriter, r *http.Request) {
	h.userToken(w, r)
}
