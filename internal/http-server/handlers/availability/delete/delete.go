package delete

import (
	"context"
	"log/slog"
	"net/http"

	"qanda-service/internal/http-server/request"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SlotDeleter interface {
	DeleteSlot(ctx context.Context, slotID, tutorID string) error
}

func New(log *slog.Logger, deleter SlotDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		slotID := chi.URLParam(r, "id")
		if slotID == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		if err := deleter.DeleteSlot(r.Context(), slotID, id.ID); err != nil {
			request.Fail(log, w, r, err, "failed to delete slot")
			return
		}

		log.Info("slot deleted", slog.String("slot_id", slotID))

		w.WriteHeader(http.StatusNoContent)
	}
}
