package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codepairhq/codepair/internal/domain"
)

// UserRepository handles user data access
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{col: db.db.Collection(usersCollection)}
}

// Create inserts a new user. Emails are stored lowercased; a duplicate email
// surfaces as domain.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now()
	user.Email = strings.ToLower(user.Email)
	if user.RefreshTokens == nil {
		user.RefreshTokens = []string{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// pushRefreshTokenUpdate appends a token to the tracked set. The negative
// $slice keeps only the newest MaxRefreshTokens entries, so the oldest token
// is evicted first, all in a single atomic update.
func pushRefreshTokenUpdate(token string, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{
			"refreshTokens": bson.M{
				"$each":  bson.A{token},
				"$slice": -domain.MaxRefreshTokens,
			},
		},
		"$set": bson.M{"updatedAt": now},
	}
}

// PushRefreshToken appends a refresh token to the user's tracked set,
// evicting the oldest entry once the cap is exceeded.
func (r *UserRepository) PushRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	if _, err := r.col.UpdateByID(ctx, id, pushRefreshTokenUpdate(token, time.Now())); err != nil {
		return fmt.Errorf("failed to push refresh token: %w", err)
	}
	return nil
}

// PullRefreshToken removes an exact token match from the tracked set. No-op
// when the token is absent.
func (r *UserRepository) PullRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{
		"$pull": bson.M{"refreshTokens": token},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	if _, err := r.col.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to pull refresh token: %w", err)
	}
	return nil
}

// ClearRefreshTokens empties the user's tracked set, invalidating every
// outstanding refresh token.
func (r *UserRepository) ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{"refreshTokens": bson.A{}, "updatedAt": time.Now()},
	}

	if _, err := r.col.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to clear refresh tokens: %w", err)
	}
	return nil
}

// SetResetToken stores the user's outstanding password reset token
func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"resetToken":           token,
			"resetTokenExpiration": expiresAt,
			"updatedAt":            time.Now(),
		},
	}

	if _, err := r.col.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return nil
}

// ResetPassword atomically checks the stored reset token and its expiry and,
// if they match, installs the new password hash, clears the reset fields,
// and empties the refresh token set so every device must log in again.
// Returns false when the stored token does not match or has expired.
func (r *UserRepository) ResetPassword(ctx context.Context, id primitive.ObjectID, token string, now time.Time, newHash string) (bool, error) {
	filter := bson.M{
		"_id":                  id,
		"resetToken":           token,
		"resetTokenExpiration": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"password":      newHash,
			"refreshTokens": bson.A{},
			"updatedAt":     now,
		},
		"$unset": bson.M{
			"resetToken":           "",
			"resetTokenExpiration": "",
		},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to reset password: %w", err)
	}

	return res.MatchedCount == 1, nil
}
