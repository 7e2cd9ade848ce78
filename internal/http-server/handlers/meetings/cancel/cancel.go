package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"qanda-service/internal/http-server/request"
	"qanda-service/internal/models"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type MeetingCanceller interface {
	CancelMeeting(ctx context.Context, meetingID, requesterID string, role models.Role) error
}

type Response struct {
	response.Response
	Message string `json:"message"`
}

func New(log *slog.Logger, canceller MeetingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.cancel.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		meetingID := chi.URLParam(r, "id")
		if meetingID == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		if err := canceller.CancelMeeting(r.Context(), meetingID, id.ID, id.Role); err != nil {
			request.Fail(log, w, r, err, "failed to cancel meeting")
			return
		}

		log.Info("meeting cancelled", slog.String("meeting_id", meetingID), slog.String("by", id.ID))

		render.JSON(w, r, Response{Message: "meeting cancelled"})
	}
}
