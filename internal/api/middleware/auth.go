package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codepairhq/codepair/internal/api/response"
	"github.com/codepairhq/codepair/internal/domain"
	"github.com/codepairhq/codepair/internal/repository/redis"
	"github.com/codepairhq/codepair/internal/security"
)

type contextKey string

const userKey contextKey = "user"

// AuthMiddleware gates protected routes: it verifies the bearer access token
// and resolves the acting user from the store so downstream handlers never
// trust claims from a token whose account is gone.
type AuthMiddleware struct {
	tokens   *security.TokenManager
	userRepo domain.UserRepository
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *security.TokenManager, userRepo domain.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, userRepo: userRepo}
}

// Authenticate validates the JWT access token and attaches the user
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.tokens.ParseAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				response.Unauthorized(w, "token expired")
			} else {
				response.Unauthorized(w, "invalid token")
			}
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			response.Unauthorized(w, "invalid token")
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			response.InternalError(w, "internal server error")
			return
		}
		if user == nil {
			// Token outlived the account.
			response.NotFound(w, "user not found")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser gets the resolved user from the request context
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// RateLimitMiddleware handles per-user rate limiting
type RateLimitMiddleware struct {
	rateLimiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting keyed by the authenticated user
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			response.Unauthorized(w, "unauthorized")
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), user.ID.Hex())
		if err != nil {
			// If the rate limiter fails, allow the request.
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.Format("2006-01-02T15:04:05Z"))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
