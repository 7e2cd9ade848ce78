package complete

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

type MeetingCompleter interface {
	CompleteMeeting(ctx context.Context, meetingID, tutorID string) (*api.MeetingResponse, error)
}

type Response struct {
	response.Response
	Meeting api.MeetingResponse `json:"meeting"`
}

func New(log *slog.Logger, completer MeetingCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.complete.New"

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

		meeting, err := completer.CompleteMeeting(r.Context(), meetingID, id.ID)
		if err != nil {
			request.Fail(log, w, r, err, "failed to complete meeting")
			return
		}

		log.Info("meeting completed", slog.String("meeting_id", meeting.ID))

		render.JSON(w, r, Response{Meeting: *meeting})
	}
}
