package slots

import (
	"context"
	"log/slog"
	"net/http"

	"qanda-service/api"
	"qanda-service/internal/http-server/request"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type AvailableSlotLister interface {
	ListAvailableSlots(ctx context.Context, subject string) ([]api.SlotResponse, error)
}

type Response struct {
	response.Response
	Slots []api.SlotResponse `json:"slots"`
}

func New(log *slog.Logger, lister AvailableSlotLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.slots.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		slots, err := lister.ListAvailableSlots(r.Context(), chi.URLParam(r, "subject"))
		if err != nil {
			request.Fail(log, w, r, err, "failed to list available slots")
			return
		}

		render.JSON(w, r, Response{Slots: slots})
	}
}
