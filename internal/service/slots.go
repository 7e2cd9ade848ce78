package service

import (
	"context"
	"fmt"
	"time"

	"qanda-service/api"
	"qanda-service/internal/models"
	"qanda-service/internal/storage"
	"qanda-service/pkg/response"

	"github.com/google/uuid"
)

const defaultSlotDuration = 60

// reserveSlot is the only way a slot becomes booked. It must run inside the transaction that
// also records the meeting.
func reserveSlot(ctx context.Context, tx storage.Tx, slotID string, subject models.Subject) (*models.AvailabilitySlot, error) {
	const op = "service.reserveSlot"

	if _, err := uuid.Parse(slotID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	slot, err := tx.ReserveSlot(ctx, slotID, subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slot, nil
}

func releaseSlot(ctx context.Context, tx storage.Tx, slotID string) error {
	const op = "service.releaseSlot"

	if err := tx.ReleaseSlot(ctx, slotID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) CreateSlots(ctx context.Context, tutorID string, req *api.SetAvailabilityRequest) ([]api.SlotResponse, error) {
	const op = "service.CreateSlots"

	if _, err := s.store.GetAccount(ctx, models.RoleTutor, tutorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	today := s.today()
	slots := make([]models.AvailabilitySlot, 0, len(req.Slots))

	for _, in := range req.Slots {
		date, err := time.ParseInLocation(dateLayout, in.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid date %q: %w", op, in.Date, response.ErrBadRequest)
		}

		if date.Before(today) {
			return nil, fmt.Errorf("%s: date %s is in the past: %w", op, in.Date, response.ErrBadRequest)
		}

		// zero-padded HH:MM compares lexically
		if in.StartTime >= in.EndTime {
			return nil, fmt.Errorf("%s: start_time must be before end_time: %w", op, response.ErrBadRequest)
		}

		duration := in.Duration
		if duration == 0 {
			duration = defaultSlotDuration
		}

		slots = append(slots, models.AvailabilitySlot{
			TutorID:   tutorID,
			Date:      date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Duration:  duration,
		})
	}

	created, err := s.store.CreateSlots(ctx, slots)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.SlotResponse, 0, len(created))
	for i := range created {
		out = append(out, toSlotResponse(&created[i], nil))
	}

	return out, nil
}

// ListMySlots returns every future slot of the tutor, booked or not.
func (s *Service) ListMySlots(ctx context.Context, tutorID string) ([]api.SlotResponse, error) {
	const op = "service.ListMySlots"

	return s.listTutorSlots(ctx, op, tutorID, false)
}

func (s *Service) ListTutorFreeSlots(ctx context.Context, tutorID string) ([]api.SlotResponse, error) {
	const op = "service.ListTutorFreeSlots"

	if _, err := uuid.Parse(tutorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return s.listTutorSlots(ctx, op, tutorID, true)
}

func (s *Service) listTutorSlots(ctx context.Context, op, tutorID string, onlyFree bool) ([]api.SlotResponse, error) {
	slots, err := s.store.ListSlotsByTutor(ctx, tutorID, s.today(), onlyFree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.SlotResponse, 0, len(slots))
	for i := range slots {
		out = append(out, toSlotResponse(&slots[i], nil))
	}

	return out, nil
}

// ListAvailableSlots returns free future slots of tutors teaching subject.
func (s *Service) ListAvailableSlots(ctx context.Context, subject string) ([]api.SlotResponse, error) {
	const op = "service.ListAvailableSlots"

	subj := models.Subject(subject)
	if !subj.Valid() {
		return nil, fmt.Errorf("%s: unknown subject %q: %w", op, subject, response.ErrBadRequest)
	}

	views, err := s.store.ListFreeSlotsBySubject(ctx, subj, s.today())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.SlotResponse, 0, len(views))
	for i := range views {
		out = append(out, toSlotResponse(&views[i].AvailabilitySlot, views[i].Tutor))
	}

	return out, nil
}

func (s *Service) DeleteSlot(ctx context.Context, slotID, tutorID string) error {
	const op = "service.DeleteSlot"

	if _, err := uuid.Parse(slotID); err != nil {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if err := s.store.DeleteFreeSlot(ctx, slotID, tutorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
