package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codepairhq/codepair/internal/domain"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) PushRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) PullRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ResetPassword(ctx context.Context, id primitive.ObjectID, token string, now time.Time, newHash string) (bool, error) {
	args := m.Called(ctx, id, token, now, newHash)
	return args.Bool(0), args.Error(1)
}

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ListActive(ctx context.Context, limit int) ([]domain.Session, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ListCompletedForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Session, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ClaimParticipant(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ReleaseParticipant(ctx context.Context, id, userID primitive.ObjectID) (*domain.Session, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Complete(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

// MockRoomProvisioner mocks the RoomProvisioner interface
type MockRoomProvisioner struct {
	mock.Mock
}

func (m *MockRoomProvisioner) Provision(ctx context.Context, callID, hostID, name string) error {
	args := m.Called(ctx, callID, hostID, name)
	return args.Error(0)
}

func (m *MockRoomProvisioner) Teardown(ctx context.Context, callID string) error {
	args := m.Called(ctx, callID)
	return args.Error(0)
}

func (m *MockRoomProvisioner) AddMember(ctx context.Context, callID, userID string) error {
	args := m.Called(ctx, callID, userID)
	return args.Error(0)
}

func (m *MockRoomProvisioner) RemoveMember(ctx context.Context, callID, userID string) error {
	args := m.Called(ctx, callID, userID)
	return args.Error(0)
}

// MockSessionCache mocks the SessionCache interface
type MockSessionCache struct {
	mock.Mock
}

func (m *MockSessionCache) GetActive(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionCache) SetActive(ctx context.Context, sessions []domain.Session) error {
	args := m.Called(ctx, sessions)
	return args.Error(0)
}

func (m *MockSessionCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
