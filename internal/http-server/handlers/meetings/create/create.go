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

type MeetingScheduler interface {
	ScheduleMeeting(ctx context.Context, studentID string, req *api.ScheduleRequest, idempotencyKey string) (*api.MeetingResponse, error)
}

type Request struct {
	api.ScheduleRequest
}

type Response struct {
	response.Response
	Meeting api.MeetingResponse `json:"meeting"`
}

func New(log *slog.Logger, scheduler MeetingScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.create.New"

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

		meeting, err := scheduler.ScheduleMeeting(r.Context(), id.ID, &req.ScheduleRequest, r.Header.Get("Idempotency-Key"))
		if err != nil {
			request.Fail(log, w, r, err, "failed to schedule meeting")
			return
		}

		log.Info("meeting scheduled",
			slog.String("meeting_id", meeting.ID),
			slog.String("slot_id", meeting.AvailabilitySlotID),
		)

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, meeting)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, meeting *api.MeetingResponse) {
	render.JSON(w, r, Response{
		Meeting: *meeting,
	})
}
