package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"qanda-service/internal/models"
	"qanda-service/internal/storage"
	"qanda-service/pkg/response"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Migrate applies every pending embedded migration.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: set dialect: %w", op, err)
	}

	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// RunInTx runs fn on a single transaction and commits when fn returns nil.
func (s *Storage) RunInTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	const op = "storage.postgres.RunInTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

type txStore struct {
	tx *sql.Tx
}

type scanner interface {
	Scan(dest ...any) error
}

// mapErr folds driver errors into the response taxonomy.
func mapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, response.ErrAlreadyExists)
		case "23503":
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		case "22P02":
			// malformed uuid can never match a row
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func tutorRef(id, name, email, subject sql.NullString) *models.UserRef {
	if !id.Valid {
		return nil
	}

	return &models.UserRef{
		ID:      id.String,
		Name:    name.String,
		Email:   email.String,
		Subject: models.Subject(subject.String),
	}
}

func studentRef(id, name, email, class, college sql.NullString) *models.UserRef {
	if !id.Valid {
		return nil
	}

	return &models.UserRef{
		ID:      id.String,
		Name:    name.String,
		Email:   email.String,
		Class:   class.String,
		College: college.String,
	}
}
