package tutor

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

type FreeSlotLister interface {
	ListTutorFreeSlots(ctx context.Context, tutorID string) ([]api.SlotResponse, error)
}

type Response struct {
	response.Response
	Slots []api.SlotResponse `json:"slots"`
}

func New(log *slog.Logger, lister FreeSlotLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.tutor.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		tutorID := chi.URLParam(r, "tutorId")
		if tutorID == "" {
			log.Error("tutor id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "tutor id is required"))
			return
		}

		slots, err := lister.ListTutorFreeSlots(r.Context(), tutorID)
		if err != nil {
			request.Fail(log, w, r, err, "failed to list tutor slots")
			return
		}

		render.JSON(w, r, Response{Slots: slots})
	}
}
