package me

import (
	"context"
	"log/slog"
	"net/http"

	"qanda-service/api"
	"qanda-service/internal/auth"
	"qanda-service/internal/http-server/request"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Profiler interface {
	Me(ctx context.Context, id auth.Identity) (*api.UserResponse, error)
}

type Response struct {
	response.Response
	User api.UserResponse `json:"user"`
}

func New(log *slog.Logger, profiler Profiler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.me.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		user, err := profiler.Me(r.Context(), id)
		if err != nil {
			request.Fail(log, w, r, err, "failed to load profile")
			return
		}

		render.JSON(w, r, Response{User: *user})
	}
}
