package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"qanda-service/api"
	"qanda-service/internal/auth"
	"qanda-service/internal/lock"
	"qanda-service/internal/models"
	"qanda-service/internal/notify"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

type published struct {
	audience notify.Audience
	event    string
	payload  any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(_ context.Context, audience notify.Audience, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, published{audience: audience, event: event, payload: payload})
	return nil
}

func (r *recorder) all() []published {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]published(nil), r.events...)
}

func (r *recorder) named(event string) []published {
	var out []published
	for _, e := range r.all() {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	svc    *Service
	store  *memStore
	events *recorder
	locker *lock.MemoryLock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	events := &recorder{}
	locker := lock.NewMemoryLock()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(store, events, locker, auth.NewManager("test-secret", time.Hour), log,
		WithClock(func() time.Time { return testNow }),
		WithMeet(MeetConfig{BaseURL: "https://meet.example.org/", RoomPrefix: "room-"}),
	)

	return &fixture{svc: svc, store: store, events: events, locker: locker}
}

// slotFor creates one free slot for tutorID through the service.
func (f *fixture) slotFor(t *testing.T, tutorID, date, start, end string) string {
	t.Helper()

	slots, err := f.svc.CreateSlots(context.Background(), tutorID, &api.SetAvailabilityRequest{
		Slots: []api.SlotRequest{{Date: date, StartTime: start, EndTime: end}},
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)

	return slots[0].ID
}

func (f *fixture) question(t *testing.T, studentID string, subject models.Subject) string {
	t.Helper()

	q, err := f.svc.PostQuestion(context.Background(), studentID, &api.PostQuestionRequest{
		Subject:      string(subject),
		QuestionText: "How does a binary heap keep its shape?",
	})
	require.NoError(t, err)

	return q.ID
}
