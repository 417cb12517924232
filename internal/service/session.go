package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codepairhq/codepair/internal/domain"
)

// SessionService enforces the two-party session state machine:
// active(vacant) -> active(full) -> completed. External chat/video resources
// are mirrored through the injected RoomProvisioner.
type SessionService struct {
	sessions domain.SessionRepository
	rooms    domain.RoomProvisioner
	cache    domain.SessionCache
}

// NewSessionService creates a new session service
func NewSessionService(sessions domain.SessionRepository, rooms domain.RoomProvisioner, cache domain.SessionCache) *SessionService {
	return &SessionService{sessions: sessions, rooms: rooms, cache: cache}
}

// newCallID generates the correlation key linking a session to its external
// chat channel and video call. Stable for the session's entire life.
func newCallID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}

func (s *SessionService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate session cache")
	}
}

// Create creates a session with the caller as host and provisions the
// external video call and chat channel. Provisioning failure is fatal to the
// whole operation: the record is removed so no session exists without its
// external resources.
func (s *SessionService) Create(ctx context.Context, hostID primitive.ObjectID, input domain.SessionCreate) (*domain.Session, error) {
	session := &domain.Session{
		Problem:    input.Problem,
		Difficulty: input.Difficulty,
		Host:       hostID,
		CallID:     newCallID(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := s.rooms.Provision(ctx, session.CallID, hostID.Hex(), session.Problem+" Session"); err != nil {
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
			log.Error().Err(delErr).Str("sessionId", session.ID.Hex()).
				Msg("failed to remove session after provisioning failure")
		}
		return nil, fmt.Errorf("failed to provision session room: %w", err)
	}

	s.invalidateCache(ctx)
	return session, nil
}

// GetByID retrieves a session by ID
func (s *SessionService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ListActive returns active sessions, newest first, capped at 20. Served
// from the short-TTL cache when possible.
func (s *SessionService) ListActive(ctx context.Context) ([]domain.Session, error) {
	if s.cache != nil {
		cached, err := s.cache.GetActive(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("session cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	sessions, err := s.sessions.ListActive(ctx, domain.RecentSessionsLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetActive(ctx, sessions); err != nil {
			log.Warn().Err(err).Msg("session cache write failed")
		}
	}

	return sessions, nil
}

// ListMyRecent returns completed sessions the user hosted or joined, newest
// first, capped at 20.
func (s *SessionService) ListMyRecent(ctx context.Context, userID primitive.ObjectID) ([]domain.Session, error) {
	return s.sessions.ListCompletedForUser(ctx, userID, domain.RecentSessionsLimit)
}

// Join fills the participant slot. The slot is claimed with a conditional
// update, so two concurrent joins against the same session cannot both win.
// Joining a session you already occupy is an idempotent success.
func (s *SessionService) Join(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusActive {
		return nil, domain.ErrSessionNotActive
	}
	if session.Host == userID {
		return nil, domain.ErrHostCannotJoin
	}
	if session.IsParticipant(userID) {
		return session, nil
	}
	if session.HasParticipant() {
		return nil, domain.ErrSessionFull
	}

	claimed, err := s.sessions.ClaimParticipant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		// Lost the race; re-read to report the precise outcome.
		return s.joinConflict(ctx, id, userID)
	}

	if err := s.rooms.AddMember(ctx, claimed.CallID, userID.Hex()); err != nil {
		return nil, fmt.Errorf("failed to add user to chat channel: %w", err)
	}

	s.invalidateCache(ctx)
	return claimed, nil
}

// joinConflict re-reads after a lost claim. A duplicate join racing itself is
// still an idempotent success, so that branch must carry the session.
func (s *SessionService) joinConflict(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case session == nil:
		return nil, domain.ErrSessionNotFound
	case session.Status != domain.SessionStatusActive:
		return nil, domain.ErrSessionNotActive
	case session.IsParticipant(userID):
		return session, nil
	default:
		return nil, domain.ErrSessionFull
	}
}

// Leave vacates the participant slot. Removal from the external chat channel
// is best-effort: chat membership is not authoritative state, so a failure
// there is logged and the leave still succeeds.
func (s *SessionService) Leave(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusActive {
		return nil, domain.ErrSessionNotActive
	}
	if session.Host == userID {
		return nil, domain.ErrHostCannotLeave
	}
	if !session.IsParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}

	released, err := s.sessions.ReleaseParticipant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if released == nil {
		return nil, domain.ErrNotParticipant
	}

	if err := s.rooms.RemoveMember(ctx, released.CallID, userID.Hex()); err != nil {
		log.Warn().Err(err).Str("sessionId", id.Hex()).
			Msg("failed to remove user from chat channel")
	}

	s.invalidateCache(ctx)
	return released, nil
}

// End completes a session. Host-only; tears down the externally-owned video
// call and chat channel before marking the record completed. Terminal: a
// completed session cannot be reopened or ended again.
func (s *SessionService) End(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Host != userID {
		return nil, domain.ErrNotHost
	}
	if session.Status != domain.SessionStatusActive {
		return nil, domain.ErrSessionCompleted
	}

	if err := s.rooms.Teardown(ctx, session.CallID); err != nil {
		return nil, fmt.Errorf("failed to tear down session room: %w", err)
	}

	completed, err := s.sessions.Complete(ctx, id)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		return nil, domain.ErrSessionCompleted
	}

	s.invalidateCache(ctx)
	return completed, nil
}
