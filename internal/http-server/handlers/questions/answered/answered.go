package answered

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

type AnsweredLister interface {
	ListAnsweredByTutor(ctx context.Context, tutorID string) ([]api.QuestionResponse, error)
}

type Response struct {
	response.Response
	Questions []api.QuestionResponse `json:"questions"`
}

func New(log *slog.Logger, lister AnsweredLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.questions.answered.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		questions, err := lister.ListAnsweredByTutor(r.Context(), id.ID)
		if err != nil {
			request.Fail(log, w, r, err, "failed to list answered questions")
			return
		}

		render.JSON(w, r, Response{Questions: questions})
	}
}
