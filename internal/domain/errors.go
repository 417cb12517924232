package domain

import "errors"

// Business-rule errors surfaced to API callers. Handlers map these to HTTP
// statuses; anything else is treated as an internal error.
var (
	ErrEmailTaken          = errors.New("user already exists, you can login")
	ErrInvalidCredentials  = errors.New("authentication failed, email or password is wrong")
	ErrRefreshTokenMissing = errors.New("refresh token is required")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrUserNotFound        = errors.New("user not found")

	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrHostCannotJoin   = errors.New("host cannot join their own session as participant")
	ErrSessionFull      = errors.New("session is full - maximum 2 participants allowed")
	ErrHostCannotLeave  = errors.New("host cannot leave, end the session instead")
	ErrNotParticipant   = errors.New("you are not a participant in this session")
	ErrNotHost          = errors.New("only the host can end the session")
	ErrSessionCompleted = errors.New("session is already completed")
)
