package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxRefreshTokens bounds the per-user refresh token set. The oldest token
// is evicted first when the cap is exceeded.
const MaxRefreshTokens = 10

// User represents a platform user
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	PasswordHash         string             `bson:"password" json:"-"`
	RefreshTokens        []string           `bson:"refreshTokens" json:"-"`
	ResetToken           string             `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiration *time.Time         `bson:"resetTokenExpiration,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the projection returned to API callers. It never carries
// password material.
type PublicUser struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// Public returns the caller-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// HasRefreshToken reports whether token is in the user's tracked set.
func (u *User) HasRefreshToken(token string) bool {
	for _, t := range u.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

// UserCreate represents signup data
type UserCreate struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// UserLogin represents login credentials
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents a JWT access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	PushRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	PullRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, id primitive.ObjectID, token string, now time.Time, newHash string) (bool, error)
}
