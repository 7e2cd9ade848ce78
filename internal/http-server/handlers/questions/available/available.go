package available

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

type OpenQuestionLister interface {
	ListAvailableForTutor(ctx context.Context, tutorID string) ([]api.QuestionResponse, error)
}

type Response struct {
	response.Response
	Questions []api.QuestionResponse `json:"questions"`
}

func New(log *slog.Logger, lister OpenQuestionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.questions.available.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		questions, err := lister.ListAvailableForTutor(r.Context(), id.ID)
		if err != nil {
			request.Fail(log, w, r, err, "failed to list available questions")
			return
		}

		render.JSON(w, r, Response{Questions: questions})
	}
}
