package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"qanda-service/internal/auth"
	"qanda-service/internal/lock"
	"qanda-service/internal/models"
	"qanda-service/internal/notify"
	"qanda-service/internal/storage"
	"qanda-service/pkg/sl"

	"github.com/google/uuid"
)

type Store interface {
	RunInTx(ctx context.Context, fn func(tx storage.Tx) error) error

	// Accounts
	CreateStudent(ctx context.Context, student *models.Student) (string, error)
	CreateTutor(ctx context.Context, tutor *models.Tutor) (string, error)
	GetAccount(ctx context.Context, role models.Role, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error)
	TouchLastLogin(ctx context.Context, role models.Role, id string, at time.Time) error

	// Availability
	CreateSlots(ctx context.Context, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error)
	ListSlotsByTutor(ctx context.Context, tutorID string, from time.Time, onlyFree bool) ([]models.AvailabilitySlot, error)
	ListFreeSlotsBySubject(ctx context.Context, subject models.Subject, from time.Time) ([]models.SlotView, error)
	DeleteFreeSlot(ctx context.Context, id, tutorID string) error

	// Meetings
	GetMeeting(ctx context.Context, id string) (*models.MeetingView, error)
	ListMeetingsByStudent(ctx context.Context, studentID string) ([]models.MeetingView, error)
	ListMeetingsByTutor(ctx context.Context, tutorID string) ([]models.MeetingView, error)
	CompleteMeeting(ctx context.Context, id string) (bool, error)

	// Questions
	CreateQuestion(ctx context.Context, q *models.Question) (string, error)
	GetQuestion(ctx context.Context, id string) (*models.QuestionView, error)
	ListOpenQuestions(ctx context.Context, subject models.Subject) ([]models.QuestionView, error)
	ListQuestionsByStudent(ctx context.Context, studentID string) ([]models.QuestionView, error)
	ListAnsweredByTutor(ctx context.Context, tutorID string) ([]models.QuestionView, error)
	ClaimQuestion(ctx context.Context, id, tutorID string, at time.Time) (*models.Question, error)
	AnswerQuestion(ctx context.Context, id, tutorID, text string, images []string, at time.Time) (*models.Question, error)
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

type MeetConfig struct {
	BaseURL    string
	RoomPrefix string
}

type Service struct {
	store    Store
	notifier notify.Publisher
	locker   lock.Locker
	tokens   TokenIssuer
	log      *slog.Logger

	loc            *time.Location
	meet           MeetConfig
	idempotencyTTL time.Duration
	now            func() time.Time
}

type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithMeet(cfg MeetConfig) Option {
	return func(s *Service) {
		s.meet = cfg
	}
}

func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.idempotencyTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, notifier notify.Publisher, locker lock.Locker, tokens TokenIssuer, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:          store,
		notifier:       notifier,
		locker:         locker,
		tokens:         tokens,
		log:            log,
		loc:            time.UTC,
		meet:           MeetConfig{BaseURL: "https://meet.jit.si", RoomPrefix: "qanda-"},
		idempotencyTTL: 10 * time.Second,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// publish hands an event to the notifier after the write it describes has committed.
// Delivery problems are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, audience notify.Audience, event string, payload any) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.Publish(ctx, audience, event, payload); err != nil {
		s.log.Warn("failed to publish event",
			slog.String("event", event),
			slog.String("audience", string(audience)),
			sl.Err(err),
		)
	}
}

// today is the start of the current day in the service location.
func (s *Service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Service) meetLink() string {
	room := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strings.TrimRight(s.meet.BaseURL, "/") + "/" + s.meet.RoomPrefix + room
}
