package storage

import (
	"context"

	"qanda-service/internal/models"
)

// Tx is the set of writes that must commit together. Implementations run every call on the
// same database transaction.
type Tx interface {
	// ReserveSlot flips is_booked false->true in one conditional update. It fails with
	// response.ErrNotFound, response.ErrAlreadyBooked or response.ErrSubjectMismatch.
	ReserveSlot(ctx context.Context, slotID string, subject models.Subject) (*models.AvailabilitySlot, error)
	// ReleaseSlot sets is_booked false. Releasing a free slot is not an error.
	ReleaseSlot(ctx context.Context, slotID string) error
	CreateMeeting(ctx context.Context, meeting *models.Meeting) (string, error)
	// CancelMeeting moves a scheduled meeting to cancelled and reports whether it did.
	CancelMeeting(ctx context.Context, meetingID string) (cancelled bool, slotID string, err error)
}
