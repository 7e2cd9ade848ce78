package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"qanda-service/api"
	"qanda-service/internal/auth"
	"qanda-service/internal/models"
	"qanda-service/pkg/response"
	"qanda-service/pkg/sl"

	"golang.org/x/crypto/bcrypt"
)

// Register creates a student or tutor account and signs the caller in.
func (s *Service) Register(ctx context.Context, role models.Role, req *api.RegisterRequest) (*api.AuthResponse, error) {
	const op = "service.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: hash password: %w", op, err)
	}

	acc := &models.Account{
		Role:  role,
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
	}

	switch role {
	case models.RoleStudent:
		student := &models.Student{
			Name:         acc.Name,
			Email:        acc.Email,
			PhoneNumber:  req.PhoneNumber,
			PasswordHash: string(hash),
			Class:        req.Class,
			College:      req.College,
		}
		if acc.ID, err = s.store.CreateStudent(ctx, student); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		acc.Class = student.Class

	case models.RoleTutor:
		subject := models.Subject(req.Subject)
		if !subject.Valid() {
			return nil, fmt.Errorf("%s: tutor needs a valid subject: %w", op, response.ErrBadRequest)
		}
		tutor := &models.Tutor{
			Name:         acc.Name,
			Email:        acc.Email,
			PhoneNumber:  req.PhoneNumber,
			PasswordHash: string(hash),
			Subject:      subject,
			College:      req.College,
		}
		if acc.ID, err = s.store.CreateTutor(ctx, tutor); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		acc.Subject = subject

	default:
		return nil, fmt.Errorf("%s: unknown role %q: %w", op, role, response.ErrBadRequest)
	}

	return s.signIn(op, acc)
}

// Login checks the password and returns a signed session. Unknown e-mail and wrong password
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, role models.Role, req *api.LoginRequest) (*api.AuthResponse, error) {
	const op = "service.Login"

	if !role.Valid() {
		return nil, fmt.Errorf("%s: unknown role %q: %w", op, role, response.ErrBadRequest)
	}

	acc, err := s.store.GetAccountByEmail(ctx, role, req.Email)
	if errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	if err := s.store.TouchLastLogin(ctx, role, acc.ID, s.now()); err != nil {
		s.log.Warn("failed to record last login", slog.String("op", op), sl.Err(err))
	}

	return s.signIn(op, acc)
}

func (s *Service) signIn(op string, acc *models.Account) (*api.AuthResponse, error) {
	token, _, err := s.tokens.Issue(auth.Identity{ID: acc.ID, Role: acc.Role, Email: acc.Email})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.AuthResponse{Token: token, User: toUserResponse(acc)}, nil
}

func (s *Service) Me(ctx context.Context, id auth.Identity) (*api.UserResponse, error) {
	const op = "service.Me"

	acc, err := s.store.GetAccount(ctx, id.Role, id.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := toUserResponse(acc)

	return &user, nil
}
