package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "middleware-secret"

type mockSessionRepo struct {
	sessions map[uuid.UUID]*entity.Session
}

func (m *mockSessionRepo) Create(context.Context, *entity.Session) error { return nil }

func (m *mockSessionRepo) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	return m.sessions[token], nil
}

func (m *mockSessionRepo) Revoke(context.Context, uuid.UUID) (bool, error)     { return true, nil }
func (m *mockSessionRepo) CleanExpiredSessions(context.Context) (int64, error) { return 0, nil }

type mockUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (m *mockUserRepo) Create(context.Context, *entity.User) error { return nil }

func (m *mockUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) FindByEmail(context.Context, string) (*entity.User, error) { return nil, nil }
func (m *mockUserRepo) List(context.Context, entity.MemberFilter) ([]*entity.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Count(context.Context, entity.MemberFilter) (int64, error)   { return 0, nil }
func (m *mockUserRepo) CountByRole(context.Context, entity.UserRole) (int64, error) { return 0, nil }
func (m *mockUserRepo) Update(context.Context, *entity.User) error                  { return nil }
func (m *mockUserRepo) DeleteCascade(context.Context, uuid.UUID) error              { return nil }

func issue(t *testing.T, userID uuid.UUID, role string, session uuid.UUID, exp time.Time) string {
	t.Helper()
	token, err := utils.GenerateAccessToken(secret, userID, role, session, exp)
	require.NoError(t, err)
	return token
}

func TestAuthSession(t *testing.T) {
	userID := uuid.New()
	live := uuid.New()
	revoked := uuid.New()
	repo := &mockSessionRepo{sessions: map[uuid.UUID]*entity.Session{
		live: {UserID: userID, Token: live, ExpiresAt: time.Now().Add(time.Hour)},
	}}

	var gotUser uuid.UUID
	var gotSession uuid.UUID
	handler := AuthSession(repo, secret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = utils.GetUserIDFromContext(r.Context())
		gotSession, _ = utils.GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + issue(t, userID, "student", live, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + func() string {
			tok, _ := utils.GenerateAccessToken("other", userID, "student", live, time.Now().Add(time.Hour))
			return tok
		}(), http.StatusUnauthorized},
		{"expired token", "Bearer " + issue(t, userID, "student", live, time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"revoked session", "Bearer " + issue(t, userID, "student", revoked, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"session of another user", "Bearer " + issue(t, uuid.New(), "student", live, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"valid", "Bearer " + issue(t, userID, "student", live, time.Now().Add(time.Hour)), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, userID, gotUser)
	assert.Equal(t, live, gotSession)
}

func TestAdmin(t *testing.T) {
	admin := &entity.User{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, Role: entity.RoleAdmin}
	student := &entity.User{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, Role: entity.RoleStudent}
	repo := &mockUserRepo{users: map[uuid.UUID]*entity.User{admin.ID: admin, student.ID: student}}

	handler := Admin(repo, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		userID uuid.UUID
		claim  string
		want   int
	}{
		{"admin", admin.ID, "admin", http.StatusNoContent},
		{"student with forged admin claim", student.ID, "admin", http.StatusForbidden},
		{"admin with stale student claim", admin.ID, "student", http.StatusForbidden},
		{"deleted user", uuid.New(), "admin", http.StatusForbidden},
		{"no user", uuid.Nil, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.userID != uuid.Nil {
				req = req.WithContext(utils.SetUserContext(req.Context(), tt.userID, tt.claim))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
