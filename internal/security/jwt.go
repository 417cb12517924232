package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failure modes. Expired tokens are distinguished from
// every other validation failure so callers can report them separately.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the subject identity on access and refresh tokens.
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies JWT tokens. Access and refresh tokens are
// signed with distinct secrets so a leak of one secret class cannot forge
// the other token class. Reset tokens ride on the access secret.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		resetTTL:      time.Hour,
	}
}

func (m *TokenManager) sign(userID, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "codepair",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// GenerateAccessToken issues a short-lived access token for the user.
func (m *TokenManager) GenerateAccessToken(userID, email string) (string, error) {
	return m.sign(userID, email, m.accessSecret, m.accessTTL)
}

// GenerateRefreshToken issues a refresh token signed with the refresh secret.
func (m *TokenManager) GenerateRefreshToken(userID, email string) (string, error) {
	return m.sign(userID, email, m.refreshSecret, m.refreshTTL)
}

// GenerateResetToken issues a single-use password reset token (1h TTL).
func (m *TokenManager) GenerateResetToken(userID string) (string, error) {
	return m.sign(userID, "", m.accessSecret, m.resetTTL)
}

func (m *TokenManager) parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// ParseAccessToken verifies an access token and returns its claims.
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, m.accessSecret)
}

// ParseRefreshToken verifies a refresh token and returns its claims. This is
// a purely cryptographic check; membership in the user's tracked token set
// is verified separately by the auth service.
func (m *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, m.refreshSecret)
}

// ParseResetToken verifies a password reset token and returns its claims.
func (m *TokenManager) ParseResetToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, m.accessSecret)
}

// AccessTokenTTL returns the access token TTL
func (m *TokenManager) AccessTokenTTL() time.Duration {
	return m.accessTTL
}

// ResetTokenTTL returns the reset token TTL
func (m *TokenManager) ResetTokenTTL() time.Duration {
	return m.resetTTL
}
