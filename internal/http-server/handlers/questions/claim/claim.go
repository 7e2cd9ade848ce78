package claim

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

type QuestionClaimer interface {
	ClaimQuestion(ctx context.Context, questionID, tutorID string) (*api.QuestionResponse, error)
}

type Response struct {
	response.Response
	Message  string               `json:"message"`
	Question api.QuestionResponse `json:"question"`
}

func New(log *slog.Logger, claimer QuestionClaimer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.questions.claim.New"

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

		question, err := claimer.ClaimQuestion(r.Context(), questionID, id.ID)
		if err != nil {
			request.Fail(log, w, r, err, "failed to claim question")
			return
		}

		log.Info("question claimed", slog.String("question_id", questionID), slog.String("tutor_id", id.ID))

		render.JSON(w, r, Response{Message: "question claimed", Question: *question})
	}
}
