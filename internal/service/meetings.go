package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"qanda-service/api"
	"qanda-service/internal/models"
	"qanda-service/internal/notify"
	"qanda-service/internal/storage"
	"qanda-service/pkg/response"
	"qanda-service/pkg/sl"

	"github.com/google/uuid"
)

// ScheduleMeeting books the slot for the student and records the meeting in one transaction.
// A non-empty idempotencyKey rejects a repeated submission while the first one is remembered.
func (s *Service) ScheduleMeeting(ctx context.Context, studentID string, req *api.ScheduleRequest, idempotencyKey string) (resp *api.MeetingResponse, err error) {
	const op = "service.ScheduleMeeting"

	subject := models.Subject(req.Subject)
	if !subject.Valid() {
		return nil, fmt.Errorf("%s: unknown subject %q: %w", op, req.Subject, response.ErrBadRequest)
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" || req.AvailabilitySlotID == "" {
		return nil, fmt.Errorf("%s: topic and slot are required: %w", op, response.ErrBadRequest)
	}

	if idempotencyKey != "" {
		release, lockErr := s.guard(ctx, fmt.Sprintf("schedule:%s:%s", studentID, idempotencyKey))
		if lockErr != nil {
			return nil, fmt.Errorf("%s: %w", op, lockErr)
		}
		defer func() {
			// only failed attempts may be retried with the same key
			if err != nil {
				release()
			}
		}()
	}

	var meetingID string

	err = s.store.RunInTx(ctx, func(tx storage.Tx) error {
		slot, err := reserveSlot(ctx, tx, req.AvailabilitySlotID, subject)
		if err != nil {
			return err
		}

		scheduledAt, err := s.scheduledAt(slot)
		if err != nil {
			return err
		}

		meeting := &models.Meeting{
			StudentID:          studentID,
			TutorID:            slot.TutorID,
			Subject:            subject,
			Topic:              topic,
			ScheduledAt:        scheduledAt,
			Duration:           slot.Duration,
			MeetLink:           s.meetLink(),
			Status:             models.MeetingScheduled,
			AvailabilitySlotID: slot.ID,
		}

		meetingID, err = tx.CreateMeeting(ctx, meeting)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view, err := s.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp = toMeetingResponse(view)

	s.publish(ctx, notify.AudienceTutors, notify.EventNewMeeting, resp)
	s.publish(ctx, notify.AudienceStudents, notify.EventMeetingScheduled, resp)

	return resp, nil
}

// guard takes the idempotency key and returns its release. An unreachable lock backend is
// logged and the request proceeds unguarded.
func (s *Service) guard(ctx context.Context, key string) (func(), error) {
	const op = "service.guard"

	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}

	acquired, err := s.locker.Lock(ctx, key, s.idempotencyTTL)
	if err != nil {
		s.log.Warn("idempotency guard unavailable", slog.String("op", op), sl.Err(err))
		return noop, nil
	}

	if !acquired {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}

	return func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
			s.log.Warn("failed to release idempotency key", slog.String("op", op), sl.Err(err))
		}
	}, nil
}

// scheduledAt combines the slot date with its start time in the service location.
func (s *Service) scheduledAt(slot *models.AvailabilitySlot) (time.Time, error) {
	const op = "service.scheduledAt"

	start, err := time.Parse("15:04", slot.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: bad start time %q: %w", op, slot.StartTime, err)
	}

	y, m, d := slot.Date.Date()

	return time.Date(y, m, d, start.Hour(), start.Minute(), 0, 0, s.loc), nil
}

// CancelMeeting cancels a scheduled meeting on behalf of its student or tutor and frees the
// slot in the same transaction. Cancelling an already cancelled meeting changes nothing.
func (s *Service) CancelMeeting(ctx context.Context, meetingID, requesterID string, role models.Role) error {
	const op = "service.CancelMeeting"

	if _, err := uuid.Parse(meetingID); err != nil {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	view, err := s.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !participates(&view.Meeting, requesterID, role) {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	switch view.Status {
	case models.MeetingCancelled:
		return nil
	case models.MeetingCompleted:
		return fmt.Errorf("%s: meeting already completed: %w", op, response.ErrConflict)
	}

	cancelled := false

	err = s.store.RunInTx(ctx, func(tx storage.Tx) error {
		ok, slotID, err := tx.CancelMeeting(ctx, meetingID)
		if err != nil || !ok {
			return err
		}

		cancelled = true

		return releaseSlot(ctx, tx, slotID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !cancelled {
		// lost a race with another cancel or a completion
		current, err := s.store.GetMeeting(ctx, meetingID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if current.Status == models.MeetingCompleted {
			return fmt.Errorf("%s: meeting already completed: %w", op, response.ErrConflict)
		}
		return nil
	}

	s.publish(ctx, notify.AudienceBroadcast, notify.EventMeetingCancelled, notify.MeetingCancelled{MeetingID: meetingID})

	return nil
}

func participates(m *models.Meeting, userID string, role models.Role) bool {
	switch role {
	case models.RoleStudent:
		return m.StudentID == userID
	case models.RoleTutor:
		return m.TutorID == userID
	default:
		return false
	}
}

// CompleteMeeting marks a scheduled meeting of the tutor as held. The slot stays booked.
func (s *Service) CompleteMeeting(ctx context.Context, meetingID, tutorID string) (*api.MeetingResponse, error) {
	const op = "service.CompleteMeeting"

	if _, err := uuid.Parse(meetingID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	view, err := s.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if view.TutorID != tutorID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	switch view.Status {
	case models.MeetingCompleted:
		return toMeetingResponse(view), nil
	case models.MeetingCancelled:
		return nil, fmt.Errorf("%s: meeting was cancelled: %w", op, response.ErrConflict)
	}

	ok, err := s.store.CompleteMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view, err = s.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok && view.Status != models.MeetingCompleted {
		return nil, fmt.Errorf("%s: meeting was cancelled: %w", op, response.ErrConflict)
	}

	return toMeetingResponse(view), nil
}

// ListMyMeetings returns the requester's meetings, latest scheduled first.
func (s *Service) ListMyMeetings(ctx context.Context, userID string, role models.Role) ([]api.MeetingResponse, error) {
	const op = "service.ListMyMeetings"

	var (
		views []models.MeetingView
		err   error
	)

	switch role {
	case models.RoleStudent:
		views, err = s.store.ListMeetingsByStudent(ctx, userID)
	case models.RoleTutor:
		views, err = s.store.ListMeetingsByTutor(ctx, userID)
	default:
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.MeetingResponse, 0, len(views))
	for i := range views {
		out = append(out, *toMeetingResponse(&views[i]))
	}

	return out, nil
}
