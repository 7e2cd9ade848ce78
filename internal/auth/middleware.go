package auth

import (
	"context"
	"log/slog"
	"net/http"

	"qanda-service/internal/models"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware attaches the caller's identity when a valid token is present. Requests without
// one pass through unauthenticated.
func Middleware(m *Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := m.FromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Require rejects unauthenticated requests and, when roles are given, callers outside them.
func Require(log *slog.Logger, roles ...models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				log.Warn("unauthenticated request",
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "no token provided, authorization denied"))
				return
			}

			if len(roles) > 0 && !hasRole(id.Role, roles) {
				log.Warn("role not allowed",
					slog.String("path", r.URL.Path),
					slog.String("role", string(id.Role)),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(string(response.FORBIDDEN), "role not allowed"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role models.Role, roles []models.Role) bool {
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}
