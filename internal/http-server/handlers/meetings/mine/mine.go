package mine

import (
	"context"
	"log/slog"
	"net/http"

	"qanda-service/api"
	"qanda-service/internal/http-server/request"
	"qanda-service/internal/models"
	"qanda-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type MeetingLister interface {
	ListMyMeetings(ctx context.Context, userID string, role models.Role) ([]api.MeetingResponse, error)
}

type Response struct {
	response.Response
	Meetings []api.MeetingResponse `json:"meetings"`
}

func New(log *slog.Logger, lister MeetingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.mine.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		meetings, err := lister.ListMyMeetings(r.Context(), id.ID, id.Role)
		if err != nil {
			request.Fail(log, w, r, err, "failed to list meetings")
			return
		}

		render.JSON(w, r, Response{Meetings: meetings})
	}
}
