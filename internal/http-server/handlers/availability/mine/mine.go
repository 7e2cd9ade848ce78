package mine

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

type SlotLister interface {
	ListMySlots(ctx context.Context, tutorID string) ([]api.SlotResponse, error)
}

type Response struct {
	response.Response
	Slots []api.SlotResponse `json:"slots"`
}

func New(log *slog.Logger, lister SlotLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.mine.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		slots, err := lister.ListMySlots(r.Context(), id.ID)
		if err != nil {
			request.Fail(log, w, r, err, "failed to list slots")
			return
		}

		render.JSON(w, r, Response{Slots: slots})
	}
}
