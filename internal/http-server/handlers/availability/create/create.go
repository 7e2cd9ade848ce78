package create

import (
	"context"
	"log/slog"
	"net/http"

	"qanda-service/api"
	"qanda-service/internal/http-server/request"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SlotCreator interface {
	CreateSlots(ctx context.Context, tutorID string, req *api.SetAvailabilityRequest) ([]api.SlotResponse, error)
}

type Request struct {
	api.SetAvailabilityRequest
}

type Response struct {
	response.Response
	Slots []api.SlotResponse `json:"slots"`
}

func New(log *slog.Logger, creator SlotCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		var req Request
		if !request.Decode(log, w, r, &req) {
			return
		}

		slots, err := creator.CreateSlots(r.Context(), id.ID, &req.SetAvailabilityRequest)
		if err != nil {
			request.Fail(log, w, r, err, "failed to set availability")
			return
		}

		log.Info("availability set", slog.String("tutor_id", id.ID), slog.Int("slots", len(slots)))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Slots: slots})
	}
}
