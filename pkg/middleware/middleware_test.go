package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-platform/internal/data/entity"
	"booking-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type sessionStub struct {
	sessions map[string]*entity.Session
	err      error
}

func (s *sessionStub) Create(context.Context, *entity.Session) error { return nil }

func (s *sessionStub) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[token], nil
}

func (s *sessionStub) Revoke(context.Context, string) error { return nil }

func (s *sessionStub) CleanExpiredSessions(context.Context) (int64, error) { return 0, nil }

type userStub struct {
	users map[uuid.UUID]*entity.User
}

func (u *userStub) Create(context.Context, *entity.User) error { return nil }

func (u *userStub) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return u.users[id], nil
}

func (u *userStub) FindByEmail(context.Context, string) (*entity.User, error) { return nil, nil }

func TestAuthSession(t *testing.T) {
	active := &entity.User{Base: entity.Base{ID: uuid.New()}, Role: entity.RoleStaff, IsActive: true}
	disabled := &entity.User{Base: entity.Base{ID: uuid.New()}, Role: entity.RoleAdmin}
	goodToken := uuid.NewString()
	disabledToken := uuid.NewString()

	sessions := &sessionStub{sessions: map[string]*entity.Session{
		goodToken:     {UserID: active.ID, ExpiresAt: time.Now().Add(time.Hour)},
		disabledToken: {UserID: disabled.ID, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	users := &userStub{users: map[uuid.UUID]*entity.User{active.ID: active, disabled.ID: disabled}}

	var seen entity.Actor
	var seenToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetActorFromContext(r.Context())
		seenToken, _ = utils.GetTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid session", "Bearer " + goodToken, http.StatusNoContent},
		{"lowercase scheme", "bearer " + goodToken, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + goodToken, http.StatusUnauthorized},
		{"not a uuid", "Bearer abc", http.StatusUnauthorized},
		{"unknown session", "Bearer " + uuid.NewString(), http.StatusUnauthorized},
		{"disabled account", "Bearer " + disabledToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = entity.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthSession(sessions, users, zap.NewNop())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusNoContent {
				assert.Equal(t, active.ID, seen.UserID)
				assert.Equal(t, entity.RoleStaff, seen.Role)
				assert.Equal(t, goodToken, seenToken)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		broken := &sessionStub{err: errors.New("pool closed")}
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+goodToken)
		rec := httptest.NewRecorder()

		AuthSession(broken, users, zap.NewNop())(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name string
		role entity.UserRole
		auth bool
		code int
	}{
		{"admin", entity.RoleAdmin, true, http.StatusNoContent},
		{"staff", entity.RoleStaff, true, http.StatusForbidden},
		{"anonymous", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/admin/bookings/1", nil)
			if tt.auth {
				req = req.WithContext(utils.SetUserContext(req.Context(), uuid.New(), string(tt.role)))
			}
			rec := httptest.NewRecorder()

			Admin(zap.NewNop())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := CORS("https://boats.test/")(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		req.Header.Set("Origin", "https://boats.test")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://boats.test", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		req.Header.Set("Origin", "https://evil.test")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/checkout", nil)
		req.Header.Set("Origin", "https://boats.test")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRecover(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()

	Recover(zap.NewNop())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"Internal server error"}`, rec.Body.String())
}
