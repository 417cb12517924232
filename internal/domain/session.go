package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session status values. A session only ever moves active -> completed.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// RecentSessionsLimit caps the active and my-recent listings.
const RecentSessionsLimit = 20

// Session represents a two-party coding interview session. The host and the
// callId are fixed at creation; callId is the key the external chat/video
// platform uses for the session's channel and call.
type Session struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Problem     string              `bson:"problem" json:"problem"`
	Difficulty  string              `bson:"difficulty" json:"difficulty"`
	Host        primitive.ObjectID  `bson:"host" json:"host"`
	Participant *primitive.ObjectID `bson:"participant,omitempty" json:"participant"`
	CallID      string              `bson:"callId" json:"callId"`
	Status      string              `bson:"status" json:"status"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether the participant slot is occupied.
func (s *Session) HasParticipant() bool {
	return s.Participant != nil && !s.Participant.IsZero()
}

// IsParticipant reports whether userID currently occupies the participant slot.
func (s *Session) IsParticipant(userID primitive.ObjectID) bool {
	return s.Participant != nil && *s.Participant == userID
}

// SessionCreate represents session creation data
type SessionCreate struct {
	Problem    string `json:"problem" validate:"required,max=200"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Session, error)
	ListActive(ctx context.Context, limit int) ([]Session, error)
	ListCompletedForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]Session, error)
	// ClaimParticipant fills the participant slot only if the session is
	// still active and the slot is vacant. Returns the updated session or
	// nil if the conditional write did not match.
	ClaimParticipant(ctx context.Context, id, userID primitive.ObjectID) (*Session, error)
	// ReleaseParticipant vacates the slot only if userID currently holds it.
	ReleaseParticipant(ctx context.Context, id, userID primitive.ObjectID) (*Session, error)
	// Complete transitions active -> completed. Returns nil if the session
	// was not active.
	Complete(ctx context.Context, id primitive.ObjectID) (*Session, error)
}

// RoomProvisioner manages the externally-owned chat channel and video call
// mirroring a session. Injected into the session service so the state
// machine can be tested against a fake.
type RoomProvisioner interface {
	Provision(ctx context.Context, callID, hostID, name string) error
	Teardown(ctx context.Context, callID string) error
	AddMember(ctx context.Context, callID, userID string) error
	RemoveMember(ctx context.Context, callID, userID string) error
}

// SessionCache caches the active-session listing. Implementations must treat
// a miss as (nil, nil).
type SessionCache interface {
	GetActive(ctx context.Context) ([]Session, error)
	SetActive(ctx context.Context, sessions []Session) error
	Invalidate(ctx context.Context) error
}
