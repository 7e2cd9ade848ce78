package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qanda-service/internal/models"
	"qanda-service/pkg/response"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var student = Identity{ID: "4b2b4a7e-0a51-4a5d-8e0b-6c1a6a9d2f10", Role: models.RoleStudent, Email: "sam@example.com"}

func TestIssueParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, exp, err := m.Issue(student)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, student, got)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager("secret", time.Hour)

	expired := NewManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(student)
	require.NoError(t, err)

	foreign, _, err := NewManager("other", time.Hour).Issue(student)
	require.NoError(t, err)

	badRole, _, err := m.Issue(Identity{ID: "x", Role: "admin"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{User: student}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   old,
		"signature": foreign,
		"role":      badRole,
		"alg none":  none,
		"garbage":   "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.ErrorIs(t, err, response.ErrUnauthorized)
		})
	}
}

func TestFromRequest_Sources(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, _, err := m.Issue(student)
	require.NoError(t, err)

	cookie := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	bearer := httptest.NewRequest(http.MethodGet, "/", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)

	query := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)

	for name, r := range map[string]*http.Request{"cookie": cookie, "bearer": bearer, "query": query} {
		t.Run(name, func(t *testing.T) {
			got, err := m.FromRequest(r)
			require.NoError(t, err)
			assert.Equal(t, student.ID, got.ID)
		})
	}

	_, err = m.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, response.ErrUnauthorized)
}

func TestRequire(t *testing.T) {
	m := NewManager("secret", time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	token, _, err := m.Issue(student)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, found := FromContext(r.Context())
		require.True(t, found)
		assert.Equal(t, student.ID, id.ID)
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name   string
		roles  []models.Role
		token  string
		status int
	}{
		{name: "anonymous", token: "", status: http.StatusUnauthorized},
		{name: "any role", token: token, status: http.StatusTeapot},
		{name: "matching role", roles: []models.Role{models.RoleStudent}, token: token, status: http.StatusTeapot},
		{name: "wrong role", roles: []models.Role{models.RoleTutor}, token: token, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Middleware(m)(Require(log, tt.roles...)(ok))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, r)

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}
