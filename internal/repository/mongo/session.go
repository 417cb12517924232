package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codepairhq/codepair/internal/domain"
)

// SessionRepository handles session data access
type SessionRepository struct {
	col *mongo.Collection
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{col: db.db.Collection(sessionsCollection)}
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	now := time.Now()
	session.Status = domain.SessionStatusActive
	session.CreatedAt = now
	session.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	session.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Delete removes a session record. Used to compensate when external
// provisioning fails mid-create.
func (r *SessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListActive returns active sessions, newest first
func (r *SessionRepository) ListActive(ctx context.Context, limit int) ([]domain.Session, error) {
	return r.list(ctx, bson.M{"status": domain.SessionStatusActive}, limit)
}

// ListCompletedForUser returns completed sessions where the user was host or
// participant, newest first.
func (r *SessionRepository) ListCompletedForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Session, error) {
	filter := bson.M{
		"status": domain.SessionStatusCompleted,
		"$or": bson.A{
			bson.M{"host": userID},
			bson.M{"participant": userID},
		},
	}
	return r.list(ctx, filter, limit)
}

func (r *SessionRepository) list(ctx context.Context, filter bson.M, limit int) ([]domain.Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []domain.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// ClaimParticipant fills the participant slot with a conditional update so
// two concurrent joins cannot both win. Returns nil when the session is no
// longer active or the slot is taken.
func (r *SessionRepository) ClaimParticipant(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	filter := bson.M{
		"_id":         id,
		"status":      domain.SessionStatusActive,
		"participant": nil,
	}
	update := bson.M{
		"$set": bson.M{"participant": userID, "updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// ReleaseParticipant vacates the slot only if userID currently holds it
func (r *SessionRepository) ReleaseParticipant(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	filter := bson.M{
		"_id":         id,
		"status":      domain.SessionStatusActive,
		"participant": userID,
	}
	update := bson.M{
		"$set": bson.M{"participant": nil, "updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// Complete transitions a session from active to completed. The filter makes
// the transition one-way; a second call matches nothing.
func (r *SessionRepository) Complete(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	filter := bson.M{
		"_id":    id,
		"status": domain.SessionStatusActive,
	}
	update := bson.M{
		"$set": bson.M{"status": domain.SessionStatusCompleted, "updatedAt": time.Now()},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *SessionRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Session, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session domain.Session
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return &session, nil
}
