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

type QuestionLister interface {
	ListMyQuestions(ctx context.Context, studentID string) (*api.MyQuestionsResponse, error)
}

type Response struct {
	response.Response
	api.MyQuestionsResponse
}

func New(log *slog.Logger, lister QuestionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.questions.mine.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		questions, err := lister.ListMyQuestions(r.Context(), id.ID)
		if err != nil {
			request.Fail(log, w, r, err, "failed to list questions")
			return
		}

		render.JSON(w, r, Response{MyQuestionsResponse: *questions})
	}
}
