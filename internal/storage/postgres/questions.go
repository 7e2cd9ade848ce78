package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qanda-service/internal/models"
	"qanda-service/pkg/response"

	"github.com/lib/pq"
)

const questionColumns = `q.id, q.student_id, q.subject, q.question_text, q.question_images, q.is_being_answered,
	q.answered_by, q.is_answered, q.claimed_at, q.answer_text, q.answer_images, q.answered_at,
	q.created_at, q.updated_at`

const questionViewQuery = `
	SELECT ` + questionColumns + `,
		s.id, s.name, s.email, s.class, s.college,
		t.id, t.name, t.email, t.subject
	FROM questions q
	LEFT JOIN students s ON s.id = q.student_id
	LEFT JOIN tutors t ON t.id = q.answered_by`

func scanQuestion(row scanner, q *models.Question, extra ...any) error {
	dest := []any{
		&q.ID,
		&q.StudentID,
		&q.Subject,
		&q.QuestionText,
		pq.Array(&q.QuestionImages),
		&q.IsBeingAnswered,
		&q.AnsweredBy,
		&q.IsAnswered,
		&q.ClaimedAt,
		&q.AnswerText,
		pq.Array(&q.AnswerImages),
		&q.AnsweredAt,
		&q.CreatedAt,
		&q.UpdatedAt,
	}

	return row.Scan(append(dest, extra...)...)
}

func scanQuestionView(row scanner) (*models.QuestionView, error) {
	var view models.QuestionView
	var sID, sName, sEmail, sClass, sCollege sql.NullString
	var tID, tName, tEmail, tSubject sql.NullString

	err := scanQuestion(row, &view.Question,
		&sID, &sName, &sEmail, &sClass, &sCollege,
		&tID, &tName, &tEmail, &tSubject,
	)
	if err != nil {
		return nil, err
	}

	view.Student = studentRef(sID, sName, sEmail, sClass, sCollege)
	view.Tutor = tutorRef(tID, tName, tEmail, tSubject)

	return &view, nil
}

func (s *Storage) CreateQuestion(ctx context.Context, q *models.Question) (string, error) {
	const op = "storage.postgres.CreateQuestion"

	images := q.QuestionImages
	if images == nil {
		images = []string{}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO questions (student_id, subject, question_text, question_images)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		q.StudentID,
		string(q.Subject),
		q.QuestionText,
		pq.Array(images),
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	return q.ID, nil
}

func (s *Storage) GetQuestion(ctx context.Context, id string) (*models.QuestionView, error) {
	const op = "storage.postgres.GetQuestion"

	view, err := scanQuestionView(s.db.QueryRowContext(ctx, questionViewQuery+` WHERE q.id = $1`, id))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return view, nil
}

// ListOpenQuestions returns unclaimed, unanswered questions of subject, newest first.
func (s *Storage) ListOpenQuestions(ctx context.Context, subject models.Subject) ([]models.QuestionView, error) {
	const op = "storage.postgres.ListOpenQuestions"

	return s.listQuestions(ctx, op, questionViewQuery+`
		WHERE q.subject = $1 AND q.is_answered = FALSE AND q.is_being_answered = FALSE
		ORDER BY q.created_at DESC`, string(subject))
}

func (s *Storage) ListQuestionsByStudent(ctx context.Context, studentID string) ([]models.QuestionView, error) {
	const op = "storage.postgres.ListQuestionsByStudent"

	return s.listQuestions(ctx, op, questionViewQuery+`
		WHERE q.student_id = $1
		ORDER BY q.created_at DESC`, studentID)
}

func (s *Storage) ListAnsweredByTutor(ctx context.Context, tutorID string) ([]models.QuestionView, error) {
	const op = "storage.postgres.ListAnsweredByTutor"

	return s.listQuestions(ctx, op, questionViewQuery+`
		WHERE q.answered_by = $1 AND q.is_answered = TRUE
		ORDER BY q.answered_at DESC`, tutorID)
}

func (s *Storage) listQuestions(ctx context.Context, op, query string, args ...any) ([]models.QuestionView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	questions := make([]models.QuestionView, 0)
	for rows.Next() {
		view, err := scanQuestionView(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		questions = append(questions, *view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return questions, nil
}

// ClaimQuestion moves an open question to claimed by tutorID in one conditional update.
func (s *Storage) ClaimQuestion(ctx context.Context, id, tutorID string, at time.Time) (*models.Question, error) {
	const op = "storage.postgres.ClaimQuestion"

	var q models.Question

	row := s.db.QueryRowContext(ctx, `
		UPDATE questions AS q
		SET is_being_answered = TRUE, answered_by = $2, claimed_at = $3, updated_at = $3
		WHERE q.id = $1 AND q.is_being_answered = FALSE AND q.is_answered = FALSE
		RETURNING `+questionColumns, id, tutorID, at)

	err := scanQuestion(row, &q)
	if err == nil {
		return &q, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapErr(op, err)
	}

	if err := s.questionExists(ctx, id); err != nil {
		return nil, mapErr(op, err)
	}

	return nil, fmt.Errorf("%s: %w", op, response.ErrAlreadyClaimed)
}

// AnswerQuestion moves a question claimed by tutorID to answered in one conditional update.
func (s *Storage) AnswerQuestion(ctx context.Context, id, tutorID, text string, images []string, at time.Time) (*models.Question, error) {
	const op = "storage.postgres.AnswerQuestion"

	if images == nil {
		images = []string{}
	}

	var q models.Question

	row := s.db.QueryRowContext(ctx, `
		UPDATE questions AS q
		SET is_answered = TRUE, is_being_answered = FALSE, answer_text = $3, answer_images = $4,
			answered_at = $5, updated_at = $5
		WHERE q.id = $1 AND q.is_being_answered = TRUE AND q.answered_by = $2
		RETURNING `+questionColumns, id, tutorID, text, pq.Array(images), at)

	err := scanQuestion(row, &q)
	if err == nil {
		return &q, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapErr(op, err)
	}

	if err := s.questionExists(ctx, id); err != nil {
		return nil, mapErr(op, err)
	}

	return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
}

func (s *Storage) questionExists(ctx context.Context, id string) error {
	var found string
	return s.db.QueryRowContext(ctx, `SELECT id FROM questions WHERE id = $1`, id).Scan(&found)
}
