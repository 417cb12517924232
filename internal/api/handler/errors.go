package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/codepairhq/codepair/internal/api/response"
	"github.com/codepairhq/codepair/internal/domain"
)

var validate = validator.New()

// writeError maps domain errors to HTTP statuses. Anything outside the
// taxonomy is logged and reported as a generic 500 so internal detail never
// reaches the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidRefreshToken):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrRefreshTokenMissing):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrSessionFull):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrNotHost):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrInvalidResetToken),
		errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrHostCannotJoin),
		errors.Is(err, domain.ErrHostCannotLeave),
		errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrSessionCompleted):
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Msg("unexpected error")
		response.InternalError(w, "internal server error")
	}
}

// validationMessages converts validator errors to per-field messages
func validationMessages(err error) any {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request body"
	}

	messages := make(map[string]string)
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages[e.Field()] = "field is required"
		case "email":
			messages[e.Field()] = "invalid email format"
		case "min":
			messages[e.Field()] = "must be at least " + e.Param() + " characters"
		case "max":
			messages[e.Field()] = "must be at most " + e.Param() + " characters"
		case "oneof":
			messages[e.Field()] = "must be one of: " + e.Param()
		default:
			messages[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return messages
}
