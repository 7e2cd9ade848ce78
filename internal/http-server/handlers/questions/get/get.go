package get

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

type QuestionGetter interface {
	GetQuestion(ctx context.Context, questionID string) (*api.QuestionResponse, error)
}

type Response struct {
	response.Response
	Question api.QuestionResponse `json:"question"`
}

func New(log *slog.Logger, getter QuestionGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.questions.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		question, err := getter.GetQuestion(r.Context(), id)
		if err != nil {
			request.Fail(log, w, r, err, "failed to get question")
			return
		}

		render.JSON(w, r, Response{Question: *question})
	}
}
