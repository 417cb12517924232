package security_test

import (
	"errors"
	"testing"
	"time"

	"github.com/codepairhq/codepair/internal/security"
)

const (
	testAccessSecret  = "test-access-secret-32-chars-long!"
	testRefreshSecret = "test-refresh-secret-32-chars-ok!!"
)

func newTestManager() *security.TokenManager {
	return security.NewTokenManager(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestTokenManager_GenerateAndParseAccessToken(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateAccessToken("66f1a2b3c4d5e6f7a8b9c0d1", "test@example.com")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	if token == "" {
		t.Error("access token is empty")
	}

	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("failed to parse access token: %v", err)
	}

	if claims.UserID != "66f1a2b3c4d5e6f7a8b9c0d1" {
		t.Errorf("user ID mismatch: got %v", claims.UserID)
	}
	if claims.Email != "test@example.com" {
		t.Errorf("email mismatch: got %v", claims.Email)
	}
}

func TestTokenManager_SecretsAreIndependent(t *testing.T) {
	manager := newTestManager()

	accessToken, err := manager.GenerateAccessToken("66f1a2b3c4d5e6f7a8b9c0d1", "test@example.com")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	refreshToken, err := manager.GenerateRefreshToken("66f1a2b3c4d5e6f7a8b9c0d1", "test@example.com")
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	// An access token must not verify as a refresh token, and vice versa.
	if _, err := manager.ParseRefreshToken(accessToken); err == nil {
		t.Error("access token parsed as refresh token")
	}
	if _, err := manager.ParseAccessToken(refreshToken); err == nil {
		t.Error("refresh token parsed as access token")
	}

	if _, err := manager.ParseRefreshToken(refreshToken); err != nil {
		t.Errorf("failed to parse refresh token with refresh secret: %v", err)
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	manager := security.NewTokenManager(testAccessSecret, testRefreshSecret, -time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken("66f1a2b3c4d5e6f7a8b9c0d1", "test@example.com")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	_, err = manager.ParseAccessToken(token)
	if !errors.Is(err, security.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenManager_InvalidToken(t *testing.T) {
	manager := newTestManager()

	if _, err := manager.ParseAccessToken("invalid-token"); !errors.Is(err, security.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for garbage, got %v", err)
	}

	if _, err := manager.ParseAccessToken(""); !errors.Is(err, security.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for empty token, got %v", err)
	}

	// Token signed with a different secret
	other := security.NewTokenManager("a-completely-different-secret-!!", testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
	token, _ := other.GenerateAccessToken("66f1a2b3c4d5e6f7a8b9c0d1", "test@example.com")

	if _, err := manager.ParseAccessToken(token); !errors.Is(err, security.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}
}

func TestTokenManager_ResetToken(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateResetToken("66f1a2b3c4d5e6f7a8b9c0d1")
	if err != nil {
		t.Fatalf("failed to generate reset token: %v", err)
	}

	claims, err := manager.ParseResetToken(token)
	if err != nil {
		t.Fatalf("failed to parse reset token: %v", err)
	}
	if claims.UserID != "66f1a2b3c4d5e6f7a8b9c0d1" {
		t.Errorf("user ID mismatch: got %v", claims.UserID)
	}

	if manager.ResetTokenTTL() != time.Hour {
		t.Errorf("reset token TTL mismatch: got %v", manager.ResetTokenTTL())
	}
}
