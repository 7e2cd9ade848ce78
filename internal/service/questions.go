package service

import (
	"context"
	"fmt"
	"strings"

	"qanda-service/api"
	"qanda-service/internal/models"
	"qanda-service/internal/notify"
	"qanda-service/pkg/response"

	"github.com/google/uuid"
)

const newQuestionMessage = "New question posted!"

func (s *Service) PostQuestion(ctx context.Context, studentID string, req *api.PostQuestionRequest) (*api.QuestionResponse, error) {
	const op = "service.PostQuestion"

	subject := models.Subject(req.Subject)
	if !subject.Valid() {
		return nil, fmt.Errorf("%s: unknown subject %q: %w", op, req.Subject, response.ErrBadRequest)
	}

	text := strings.TrimSpace(req.QuestionText)
	if text == "" {
		return nil, fmt.Errorf("%s: empty question: %w", op, response.ErrBadRequest)
	}

	q := &models.Question{
		StudentID:      studentID,
		Subject:        subject,
		QuestionText:   text,
		QuestionImages: req.QuestionImages,
	}

	id, err := s.store.CreateQuestion(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toQuestionResponse(view)

	s.publish(ctx, notify.AudienceTutors, notify.EventNewQuestion, notify.NewQuestion{
		Question: resp,
		Message:  newQuestionMessage,
	})

	return resp, nil
}

// ListAvailableQuestions returns open questions of subject, newest first.
func (s *Service) ListAvailableQuestions(ctx context.Context, subject models.Subject) ([]api.QuestionResponse, error) {
	const op = "service.ListAvailableQuestions"

	if !subject.Valid() {
		return nil, fmt.Errorf("%s: unknown subject %q: %w", op, subject, response.ErrBadRequest)
	}

	views, err := s.store.ListOpenQuestions(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toQuestionResponses(views), nil
}

// ListAvailableForTutor lists open questions in the subject the tutor teaches.
func (s *Service) ListAvailableForTutor(ctx context.Context, tutorID string) ([]api.QuestionResponse, error) {
	const op = "service.ListAvailableForTutor"

	tutor, err := s.store.GetAccount(ctx, models.RoleTutor, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.ListAvailableQuestions(ctx, tutor.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ClaimQuestion gives the tutor exclusive rights to answer. Exactly one of several
// concurrent claims succeeds.
func (s *Service) ClaimQuestion(ctx context.Context, questionID, tutorID string) (*api.QuestionResponse, error) {
	const op = "service.ClaimQuestion"

	if _, err := uuid.Parse(questionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	q, err := s.store.ClaimQuestion(ctx, questionID, tutorID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, notify.AudienceTutors, notify.EventClaimedQuestion, notify.QuestionClaimed{QuestionID: q.ID})

	return s.questionResponse(ctx, q)
}

// AnswerQuestion records the answer of the tutor currently holding the claim.
func (s *Service) AnswerQuestion(ctx context.Context, questionID, tutorID string, req *api.AnswerRequest) (*api.QuestionResponse, error) {
	const op = "service.AnswerQuestion"

	if _, err := uuid.Parse(questionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	text := strings.TrimSpace(req.AnswerText)
	if text == "" {
		return nil, fmt.Errorf("%s: answer text is required: %w", op, response.ErrBadRequest)
	}

	q, err := s.store.AnswerQuestion(ctx, questionID, tutorID, text, req.AnswerImages, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, notify.AudienceBroadcast, notify.EventQuestionAnswered, notify.QuestionAnswered{
		QuestionID: q.ID,
		StudentID:  q.StudentID,
	})

	return s.questionResponse(ctx, q)
}

// questionResponse re-reads q with its author and tutor populated, falling back to the bare row.
func (s *Service) questionResponse(ctx context.Context, q *models.Question) (*api.QuestionResponse, error) {
	view, err := s.store.GetQuestion(ctx, q.ID)
	if err != nil {
		return toQuestionResponse(&models.QuestionView{Question: *q}), nil
	}

	return toQuestionResponse(view), nil
}

// ListMyQuestions splits the student's questions into unanswered and answered, newest first.
func (s *Service) ListMyQuestions(ctx context.Context, studentID string) (*api.MyQuestionsResponse, error) {
	const op = "service.ListMyQuestions"

	views, err := s.store.ListQuestionsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &api.MyQuestionsResponse{
		Unanswered: make([]api.QuestionResponse, 0),
		Answered:   make([]api.QuestionResponse, 0),
	}

	for i := range views {
		q := toQuestionResponse(&views[i])
		if q.IsAnswered {
			resp.Answered = append(resp.Answered, *q)
		} else {
			resp.Unanswered = append(resp.Unanswered, *q)
		}
	}

	return resp, nil
}

func (s *Service) ListAnsweredByTutor(ctx context.Context, tutorID string) ([]api.QuestionResponse, error) {
	const op = "service.ListAnsweredByTutor"

	views, err := s.store.ListAnsweredByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toQuestionResponses(views), nil
}

func (s *Service) GetQuestion(ctx context.Context, questionID string) (*api.QuestionResponse, error) {
	const op = "service.GetQuestion"

	if _, err := uuid.Parse(questionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	view, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toQuestionResponse(view), nil
}
