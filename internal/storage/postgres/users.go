package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qanda-service/internal/models"
	"qanda-service/pkg/response"
)

func (s *Storage) CreateStudent(ctx context.Context, student *models.Student) (string, error) {
	const op = "storage.postgres.CreateStudent"

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO students (name, email, phone_number, password_hash, class, college)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		student.Name,
		strings.ToLower(student.Email),
		student.PhoneNumber,
		student.PasswordHash,
		student.Class,
		student.College,
	).Scan(&student.ID, &student.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	return student.ID, nil
}

func (s *Storage) CreateTutor(ctx context.Context, tutor *models.Tutor) (string, error) {
	const op = "storage.postgres.CreateTutor"

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tutors (name, email, phone_number, password_hash, subject, college)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		tutor.Name,
		strings.ToLower(tutor.Email),
		tutor.PhoneNumber,
		tutor.PasswordHash,
		string(tutor.Subject),
		tutor.College,
	).Scan(&tutor.ID, &tutor.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	return tutor.ID, nil
}

func accountQuery(role models.Role, where string) (string, error) {
	switch role {
	case models.RoleStudent:
		return `SELECT id, name, email, password_hash, '' AS subject, class FROM students WHERE ` + where, nil
	case models.RoleTutor:
		return `SELECT id, name, email, password_hash, subject, '' AS class FROM tutors WHERE ` + where, nil
	default:
		return "", response.ErrBadRequest
	}
}

func (s *Storage) getAccount(ctx context.Context, op string, role models.Role, where string, arg any) (*models.Account, error) {
	query, err := accountQuery(role, where)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	acc := models.Account{Role: role}

	err = s.db.QueryRowContext(ctx, query, arg).Scan(
		&acc.ID,
		&acc.Name,
		&acc.Email,
		&acc.PasswordHash,
		&acc.Subject,
		&acc.Class,
	)
	if err != nil {
		return nil, mapErr(op, err)
	}

	return &acc, nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error) {
	const op = "storage.postgres.GetAccountByEmail"

	return s.getAccount(ctx, op, role, `email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Storage) GetAccount(ctx context.Context, role models.Role, id string) (*models.Account, error) {
	const op = "storage.postgres.GetAccount"

	return s.getAccount(ctx, op, role, `id = $1`, id)
}

func (s *Storage) TouchLastLogin(ctx context.Context, role models.Role, id string, at time.Time) error {
	const op = "storage.postgres.TouchLastLogin"

	table := "students"
	if role == models.RoleTutor {
		table = "tutors"
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return mapErr(op, err)
	}

	return nil
}
