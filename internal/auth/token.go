package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"qanda-service/internal/models"
	"qanda-service/pkg/response"

	"github.com/golang-jwt/jwt/v4"
)

const CookieName = "token"

// Identity is what an authenticated request carries into the service layer.
type Identity struct {
	ID    string      `json:"id"`
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
}

type Claims struct {
	User Identity `json:"user"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs an HS256 token for id and returns it with its expiry.
func (m *Manager) Issue(id Identity) (string, time.Time, error) {
	const op = "auth.Manager.Issue"

	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		User: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt, nil
}

func (m *Manager) Parse(token string) (Identity, error) {
	const op = "auth.Manager.Parse"

	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	if claims.User.ID == "" || !claims.User.Role.Valid() {
		return Identity{}, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	return claims.User, nil
}

// FromRequest reads the token from the cookie, the bearer header or the token query
// parameter, in that order.
func (m *Manager) FromRequest(r *http.Request) (Identity, error) {
	token := extractToken(r)
	if token == "" {
		return Identity{}, fmt.Errorf("auth.Manager.FromRequest: %w", response.ErrUnauthorized)
	}

	return m.Parse(token)
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	} else if err != nil && !errors.Is(err, http.ErrNoCookie) {
		return ""
	}

	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		fields := strings.Fields(header)
		if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
			return strings.Trim(fields[1], "\"'")
		}
	}

	return r.URL.Query().Get("token")
}

// SetCookie writes the session cookie the way browsers and the websocket endpoint read it.
func SetCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
