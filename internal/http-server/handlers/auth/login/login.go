package login

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"qanda-service/api"
	"qanda-service/internal/auth"
	"qanda-service/internal/http-server/request"
	"qanda-service/internal/models"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Authenticator interface {
	Login(ctx context.Context, role models.Role, req *api.LoginRequest) (*api.AuthResponse, error)
}

type Request struct {
	api.LoginRequest
}

type Response struct {
	response.Response
	api.AuthResponse
}

func New(log *slog.Logger, authenticator Authenticator, ttl time.Duration, secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		role := models.Role(chi.URLParam(r, "role"))
		if !role.Valid() {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "unknown role"))
			return
		}

		var req Request
		if !request.Decode(log, w, r, &req) {
			return
		}

		res, err := authenticator.Login(r.Context(), role, &req.LoginRequest)
		if err != nil {
			request.Fail(log, w, r, err, "failed to login")
			return
		}

		log.Info("user logged in", slog.String("user_id", res.User.ID))

		auth.SetCookie(w, res.Token, time.Now().Add(ttl), secureCookie)
		render.JSON(w, r, Response{AuthResponse: *res})
	}
}
