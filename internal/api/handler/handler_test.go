package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codepairhq/codepair/internal/api/handler"
	"github.com/codepairhq/codepair/internal/api/middleware"
	"github.com/codepairhq/codepair/internal/config"
	"github.com/codepairhq/codepair/internal/domain"
	"github.com/codepairhq/codepair/internal/security"
	"github.com/codepairhq/codepair/internal/service"
	"github.com/codepairhq/codepair/internal/stream"
)

// fakeUserRepo serves a single fixed user for handler tests.
type fakeUserRepo struct {
	user *domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = primitive.NewObjectID()
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) PushRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return nil
}

func (f *fakeUserRepo) PullRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return nil
}

func (f *fakeUserRepo) ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error {
	return nil
}

func (f *fakeUserRepo) ResetPassword(ctx context.Context, id primitive.ObjectID, token string, now time.Time, newHash string) (bool, error) {
	return false, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return env
}

func newAuthHandler(repo domain.UserRepository) *handler.AuthHandler {
	tokens := security.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return handler.NewAuthHandler(service.NewAuthService(repo, tokens))
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()

	handler.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("expected success response")
	}
	if !strings.Contains(string(env.Data), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", env.Data)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	h := newAuthHandler(&fakeUserRepo{})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader("{not-json"))
		w := httptest.NewRecorder()

		h.Signup(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("invalid email and short password", func(t *testing.T) {
		body := `{"name":"Alice","email":"not-an-email","password":"abc"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
		w := httptest.NewRecorder()

		h.Signup(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
		if env := decodeEnvelope(t, w); env.Success {
			t.Error("expected failure response")
		}
	})
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	hash, err := security.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	h := newAuthHandler(&fakeUserRepo{user: &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	}})

	wrongPassword := `{"email":"alice@example.com","password":"wrong"}`
	unknownEmail := `{"email":"nobody@example.com","password":"hunter2"}`

	for name, body := range map[string]string{"wrong password": wrongPassword, "unknown email": unknownEmail} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
			w := httptest.NewRecorder()

			h.Login(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("expected status 403, got %d", w.Code)
			}
			env := decodeEnvelope(t, w)
			if env.Error != domain.ErrInvalidCredentials.Error() {
				t.Errorf("unexpected error message: %v", env.Error)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	hash, err := security.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	h := newAuthHandler(&fakeUserRepo{user: &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	}})

	body := `{"email":"alice@example.com","password":"hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	env := decodeEnvelope(t, w)
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.AccessToken == "" || data.RefreshToken == "" {
		t.Error("expected both tokens in response")
	}
	if data.User.Email != "alice@example.com" {
		t.Errorf("unexpected user email: %s", data.User.Email)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Error("response leaks password material")
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	h := newAuthHandler(&fakeUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestStreamHandler_Tokens(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	repo := &fakeUserRepo{user: user}

	tokens := security.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	accessToken, err := tokens.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	client := stream.NewClient(config.StreamConfig{APIKey: "key-abc", APISecret: "stream-secret"})
	h := handler.NewStreamHandler(client)
	authn := middleware.NewAuthMiddleware(tokens, repo)

	for name, endpoint := range map[string]http.HandlerFunc{
		"chat":  h.ChatToken,
		"video": h.VideoToken,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/"+name+"/token", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken)
			w := httptest.NewRecorder()

			authn.Authenticate(endpoint).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			env := decodeEnvelope(t, w)
			var data struct {
				Token    string `json:"token"`
				UserID   string `json:"userId"`
				UserName string `json:"userName"`
				APIKey   string `json:"apiKey"`
			}
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatalf("failed to decode data: %v", err)
			}
			if data.Token == "" {
				t.Error("expected a signed SDK token")
			}
			if data.UserID != user.ID.Hex() {
				t.Errorf("unexpected userId: %s", data.UserID)
			}
			if data.UserName != "Alice" {
				t.Errorf("unexpected userName: %s", data.UserName)
			}
			if data.APIKey != "key-abc" {
				t.Errorf("unexpected apiKey: %s", data.APIKey)
			}
		})
	}
}

func TestSessionHandler_InvalidID(t *testing.T) {
	h := handler.NewSessionHandler(service.NewSessionService(nil, nil, nil))

	r := chi.NewRouter()
	r.Get("/api/v1/sessions/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-an-object-id", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error != domain.ErrSessionNotFound.Error() {
		t.Errorf("unexpected error message: %v", env.Error)
	}
}
