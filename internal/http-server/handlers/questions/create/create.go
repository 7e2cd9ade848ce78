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

type QuestionPoster interface {
	PostQuestion(ctx context.Context, studentID string, req *api.PostQuestionRequest) (*api.QuestionResponse, error)
}

type Request struct {
	api.PostQuestionRequest
}

type Response struct {
	response.Response
	Question api.QuestionResponse `json:"question"`
}

func New(log *slog.Logger, poster QuestionPoster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.questions.create.New"

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

		question, err := poster.PostQuestion(r.Context(), id.ID, &req.PostQuestionRequest)
		if err != nil {
			request.Fail(log, w, r, err, "failed to post question")
			return
		}

		log.Info("question posted", slog.String("question_id", question.ID), slog.String("subject", question.Subject))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Question: *question})
	}
}
