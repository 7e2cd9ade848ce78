package answer

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

type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, questionID, tutorID string, req *api.AnswerRequest) (*api.QuestionResponse, error)
}

type Request struct {
	api.AnswerRequest
}

type Response struct {
	response.Response
	Question api.QuestionResponse `json:"question"`
}

func New(log *slog.Logger, answerer QuestionAnswerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.questions.answer.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, ok := request.Identity(log, w, r)
		if !ok {
			return
		}

		questionID := chi.URLParam(r, "id")
		if questionID == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		var req Request
		if !request.Decode(log, w, r, &req) {
			return
		}

		question, err := answerer.AnswerQuestion(r.Context(), questionID, id.ID, &req.AnswerRequest)
		if err != nil {
			request.Fail(log, w, r, err, "failed to answer question")
			return
		}

		log.Info("question answered", slog.String("question_id", questionID), slog.String("tutor_id", id.ID))

		render.JSON(w, r, Response{Question: *question})
	}
}
