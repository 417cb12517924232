package handler

import (
	"encoding/json"
	"net/http"

	"github.com/codepairhq/codepair/internal/api/middleware"
	"github.com/codepairhq/codepair/internal/api/response"
	"github.com/codepairhq/codepair/internal/domain"
	"github.com/codepairhq/codepair/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	user, tokens, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, map[string]any{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"user":         user.Public(),
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	user, tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"user":         user.Public(),
	})
}

// Refresh handles refresh token rotation
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, tokens)
}

// Logout revokes the presented refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID, input.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "logged out successfully"})
}

// LogoutAll revokes every refresh token for the calling user
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.authService.LogoutAll(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "logged out from all devices successfully"})
}

// ForgotPassword generates a password reset token. The token is returned in
// the response body rather than delivered out-of-band; secure delivery is an
// acknowledged simplification, not an oversight.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	resetToken, err := h.authService.ForgotPassword(r.Context(), input.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"resetToken": resetToken})
}

// ResetPassword sets a new password from a reset token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ResetToken  string `json:"resetToken" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=4,max=72"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	if err := h.authService.ResetPassword(r.Context(), input.ResetToken, input.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "password reset successful"})
}
