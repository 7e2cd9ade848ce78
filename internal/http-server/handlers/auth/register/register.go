package register

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

type Registrar interface {
	Register(ctx context.Context, role models.Role, req *api.RegisterRequest) (*api.AuthResponse, error)
}

type Request struct {
	api.RegisterRequest
}

type Response struct {
	response.Response
	api.AuthResponse
}

func New(log *slog.Logger, registrar Registrar, ttl time.Duration, secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		role := models.Role(chi.URLParam(r, "role"))
		if !role.Valid() {
			log.Warn("unknown role", slog.String("role", string(role)))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "unknown role"))
			return
		}

		var req Request
		if !request.Decode(log, w, r, &req) {
			return
		}

		res, err := registrar.Register(r.Context(), role, &req.RegisterRequest)
		if err != nil {
			request.Fail(log, w, r, err, "failed to register")
			return
		}

		log.Info("account registered", slog.String("user_id", res.User.ID), slog.String("role", string(role)))

		auth.SetCookie(w, res.Token, time.Now().Add(ttl), secureCookie)
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{AuthResponse: *res})
	}
}
