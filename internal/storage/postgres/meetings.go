package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qanda-service/internal/models"
)

const meetingColumns = `m.id, m.student_id, m.tutor_id, m.subject, m.topic, m.scheduled_at, m.duration,
	m.meet_link, m.status, m.availability_slot_id, m.created_at`

const meetingViewQuery = `
	SELECT ` + meetingColumns + `,
		s.id, s.name, s.email, s.class, s.college,
		t.id, t.name, t.email, t.subject
	FROM meetings m
	LEFT JOIN students s ON s.id = m.student_id
	LEFT JOIN tutors t ON t.id = m.tutor_id`

func scanMeetingView(row scanner) (*models.MeetingView, error) {
	var view models.MeetingView
	var sID, sName, sEmail, sClass, sCollege sql.NullString
	var tID, tName, tEmail, tSubject sql.NullString

	m := &view.Meeting
	err := row.Scan(
		&m.ID,
		&m.StudentID,
		&m.TutorID,
		&m.Subject,
		&m.Topic,
		&m.ScheduledAt,
		&m.Duration,
		&m.MeetLink,
		&m.Status,
		&m.AvailabilitySlotID,
		&m.CreatedAt,
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

func (s *Storage) GetMeeting(ctx context.Context, id string) (*models.MeetingView, error) {
	const op = "storage.postgres.GetMeeting"

	view, err := scanMeetingView(s.db.QueryRowContext(ctx, meetingViewQuery+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return view, nil
}

func (s *Storage) ListMeetingsByStudent(ctx context.Context, studentID string) ([]models.MeetingView, error) {
	const op = "storage.postgres.ListMeetingsByStudent"

	return s.listMeetings(ctx, op, meetingViewQuery+` WHERE m.student_id = $1 ORDER BY m.scheduled_at DESC`, studentID)
}

func (s *Storage) ListMeetingsByTutor(ctx context.Context, tutorID string) ([]models.MeetingView, error) {
	const op = "storage.postgres.ListMeetingsByTutor"

	return s.listMeetings(ctx, op, meetingViewQuery+` WHERE m.tutor_id = $1 ORDER BY m.scheduled_at DESC`, tutorID)
}

func (s *Storage) listMeetings(ctx context.Context, op, query string, args ...any) ([]models.MeetingView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	meetings := make([]models.MeetingView, 0)
	for rows.Next() {
		view, err := scanMeetingView(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		meetings = append(meetings, *view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return meetings, nil
}

// CompleteMeeting moves a scheduled meeting to completed and reports whether it did.
func (s *Storage) CompleteMeeting(ctx context.Context, id string) (bool, error) {
	const op = "storage.postgres.CompleteMeeting"

	res, err := s.db.ExecContext(ctx, `
		UPDATE meetings SET status = 'completed'
		WHERE id = $1 AND status = 'scheduled'`, id)
	if err != nil {
		return false, mapErr(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n == 1, nil
}

func (t *txStore) CreateMeeting(ctx context.Context, meeting *models.Meeting) (string, error) {
	const op = "storage.postgres.CreateMeeting"

	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO meetings
		(student_id, tutor_id, subject, topic, scheduled_at, duration, meet_link, status, availability_slot_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		meeting.StudentID,
		meeting.TutorID,
		string(meeting.Subject),
		meeting.Topic,
		meeting.ScheduledAt,
		meeting.Duration,
		meeting.MeetLink,
		string(meeting.Status),
		meeting.AvailabilitySlotID,
	).Scan(&meeting.ID, &meeting.CreatedAt)
	if err != nil {
		return "", mapErr(op, err)
	}

	return meeting.ID, nil
}

func (t *txStore) CancelMeeting(ctx context.Context, meetingID string) (bool, string, error) {
	const op = "storage.postgres.CancelMeeting"

	var slotID string

	err := t.tx.QueryRowContext(ctx, `
		UPDATE meetings SET status = 'cancelled'
		WHERE id = $1 AND status = 'scheduled'
		RETURNING availability_slot_id`, meetingID).Scan(&slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", mapErr(op, err)
	}

	return true, slotID, nil
}
