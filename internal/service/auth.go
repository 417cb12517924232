package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codepairhq/codepair/internal/domain"
	"github.com/codepairhq/codepair/internal/security"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *security.TokenManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, tokens *security.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// issueTokens generates an access/refresh pair and records the refresh token
// in the user's tracked set.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.userRepo.PushRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Signup creates a new user account and logs it in
func (s *AuthService) Signup(ctx context.Context, input domain.UserCreate) (*domain.User, *domain.TokenPair, error) {
	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Login authenticates a user and returns a fresh token pair. Unknown email
// and wrong password fail identically so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.User, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !security.CheckPassword(user.PasswordHash, input.Password) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token must verify
// cryptographically AND be present in the user's tracked set. It is removed
// before a new pair is issued, so a rotated token can never be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasRefreshToken(refreshToken) {
		// Cryptographically valid but revoked or already rotated.
		return nil, domain.ErrInvalidRefreshToken
	}

	if err := s.userRepo.PullRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout removes the presented refresh token from the user's tracked set.
// Idempotent: an unknown token still reports success to avoid leaking state.
func (s *AuthService) Logout(ctx context.Context, userID primitive.ObjectID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.userRepo.PullRefreshToken(ctx, userID, refreshToken)
}

// LogoutAll clears the user's entire refresh token set, invalidating every
// outstanding refresh token immediately.
func (s *AuthService) LogoutAll(ctx context.Context, userID primitive.ObjectID) error {
	return s.userRepo.ClearRefreshTokens(ctx, userID)
}

// ForgotPassword generates and stores a 1h password reset token. The token
// is returned to the caller; delivering it out-of-band is out of scope here.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}

	resetToken, err := s.tokens.GenerateResetToken(user.ID.Hex())
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(s.tokens.ResetTokenTTL())
	if err := s.userRepo.SetResetToken(ctx, user.ID, resetToken, expiresAt); err != nil {
		return "", err
	}

	return resetToken, nil
}

// ResetPassword validates a reset token and installs a new password. Every
// validation failure surfaces uniformly as an invalid-or-expired token.
// Success clears all refresh tokens, forcing re-login on every device.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.ParseResetToken(resetToken)
	if err != nil {
		return domain.ErrInvalidResetToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return domain.ErrInvalidResetToken
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	ok, err := s.userRepo.ResetPassword(ctx, userID, resetToken, time.Now(), hash)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidResetToken
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
