package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qanda-service/internal/models"
	"qanda-service/pkg/response"
)

const slotColumns = `a.id, a.tutor_id, a.date, a.start_time, a.end_time, a.duration, a.is_booked, a.created_at`

func scanSlot(row scanner, slot *models.AvailabilitySlot, extra ...any) error {
	dest := []any{
		&slot.ID,
		&slot.TutorID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Duration,
		&slot.IsBooked,
		&slot.CreatedAt,
	}

	return row.Scan(append(dest, extra...)...)
}

func (s *Storage) CreateSlots(ctx context.Context, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	const op = "storage.postgres.CreateSlots"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO availability_slots AS a (tutor_id, date, start_time, end_time, duration, is_booked)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING `+slotColumns)
	if err != nil {
		return nil, fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	created := make([]models.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		var out models.AvailabilitySlot

		row := stmt.QueryRowContext(ctx, slot.TutorID, slot.Date, slot.StartTime, slot.EndTime, slot.Duration)
		if err := scanSlot(row, &out); err != nil {
			return nil, mapErr(op, err)
		}

		created = append(created, out)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return created, nil
}

// ListSlotsByTutor returns the tutor's slots dated on or after from, earliest first.
func (s *Storage) ListSlotsByTutor(ctx context.Context, tutorID string, from time.Time, onlyFree bool) ([]models.AvailabilitySlot, error) {
	const op = "storage.postgres.ListSlotsByTutor"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+slotColumns+`
		FROM availability_slots a
		WHERE a.tutor_id = $1
		AND a.date >= $2::date
		AND ($3 = FALSE OR a.is_booked = FALSE)
		ORDER BY a.date, a.start_time`, tutorID, from, onlyFree)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	slots := make([]models.AvailabilitySlot, 0)
	for rows.Next() {
		var slot models.AvailabilitySlot
		if err := scanSlot(rows, &slot); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

// ListFreeSlotsBySubject returns free slots dated on or after from, owned by tutors of subject.
func (s *Storage) ListFreeSlotsBySubject(ctx context.Context, subject models.Subject, from time.Time) ([]models.SlotView, error) {
	const op = "storage.postgres.ListFreeSlotsBySubject"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+slotColumns+`, t.id, t.name, t.email, t.subject
		FROM availability_slots a
		JOIN tutors t ON t.id = a.tutor_id
		WHERE t.subject = $1
		AND a.date >= $2::date
		AND a.is_booked = FALSE
		ORDER BY a.date, a.start_time`, string(subject), from)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	views := make([]models.SlotView, 0)
	for rows.Next() {
		var view models.SlotView
		var tID, tName, tEmail, tSubject sql.NullString

		if err := scanSlot(rows, &view.AvailabilitySlot, &tID, &tName, &tEmail, &tSubject); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		view.Tutor = tutorRef(tID, tName, tEmail, tSubject)
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

// DeleteFreeSlot removes a slot owned by tutorID only while it is free.
func (s *Storage) DeleteFreeSlot(ctx context.Context, id, tutorID string) error {
	const op = "storage.postgres.DeleteFreeSlot"

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM availability_slots
		WHERE id = $1 AND tutor_id = $2 AND is_booked = FALSE`, id, tutorID)
	if err != nil {
		return mapErr(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 1 {
		return nil
	}

	var owner string
	var isBooked bool

	err = s.db.QueryRowContext(ctx, `SELECT tutor_id, is_booked FROM availability_slots WHERE id = $1`, id).
		Scan(&owner, &isBooked)
	if err != nil {
		return mapErr(op, err)
	}

	switch {
	case owner != tutorID:
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	case isBooked:
		return fmt.Errorf("%s: %w", op, response.ErrSlotBooked)
	default:
		// freed and re-deleted concurrently
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
}

func (t *txStore) ReserveSlot(ctx context.Context, slotID string, subject models.Subject) (*models.AvailabilitySlot, error) {
	const op = "storage.postgres.ReserveSlot"

	var slot models.AvailabilitySlot

	row := t.tx.QueryRowContext(ctx, `
		UPDATE availability_slots AS a
		SET is_booked = TRUE
		FROM tutors t
		WHERE a.id = $1
		AND a.is_booked = FALSE
		AND t.id = a.tutor_id
		AND t.subject = $2
		RETURNING `+slotColumns, slotID, string(subject))

	err := scanSlot(row, &slot)
	if err == nil {
		return &slot, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapErr(op, err)
	}

	var isBooked bool
	var tutorSubject sql.NullString

	err = t.tx.QueryRowContext(ctx, `
		SELECT a.is_booked, t.subject
		FROM availability_slots a
		LEFT JOIN tutors t ON t.id = a.tutor_id
		WHERE a.id = $1`, slotID).Scan(&isBooked, &tutorSubject)
	if err != nil {
		return nil, mapErr(op, err)
	}

	if !isBooked && tutorSubject.String != string(subject) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSubjectMismatch)
	}

	return nil, fmt.Errorf("%s: %w", op, response.ErrAlreadyBooked)
}

func (t *txStore) ReleaseSlot(ctx context.Context, slotID string) error {
	const op = "storage.postgres.ReleaseSlot"

	if _, err := t.tx.ExecContext(ctx, `UPDATE availability_slots SET is_booked = FALSE WHERE id = $1`, slotID); err != nil {
		return mapErr(op, err)
	}

	return nil
}
