package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"qanda-service/internal/models"
	"qanda-service/internal/storage"
	"qanda-service/pkg/response"

	"github.com/google/uuid"
)

// memStore mirrors the conditional-update semantics of the postgres store. A transaction
// holds the store lock for its whole run and restores slots and meetings on error.
type memStore struct {
	mu sync.Mutex

	students  map[string]*models.Student
	tutors    map[string]*models.Tutor
	slots     map[string]*models.AvailabilitySlot
	meetings  map[string]*models.Meeting
	questions map[string]*models.Question

	createMeetingErr error
}

func newMemStore() *memStore {
	return &memStore{
		students:  make(map[string]*models.Student),
		tutors:    make(map[string]*models.Tutor),
		slots:     make(map[string]*models.AvailabilitySlot),
		meetings:  make(map[string]*models.Meeting),
		questions: make(map[string]*models.Question),
	}
}

func (m *memStore) RunInTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slots := make(map[string]models.AvailabilitySlot, len(m.slots))
	for id, s := range m.slots {
		slots[id] = *s
	}
	meetings := make(map[string]models.Meeting, len(m.meetings))
	for id, mt := range m.meetings {
		meetings[id] = *mt
	}

	if err := fn(&memTx{m: m}); err != nil {
		m.slots = make(map[string]*models.AvailabilitySlot, len(slots))
		for id, s := range slots {
			s := s
			m.slots[id] = &s
		}
		m.meetings = make(map[string]*models.Meeting, len(meetings))
		for id, mt := range meetings {
			mt := mt
			m.meetings[id] = &mt
		}
		return err
	}

	return nil
}

type memTx struct {
	m *memStore
}

func (t *memTx) ReserveSlot(_ context.Context, slotID string, subject models.Subject) (*models.AvailabilitySlot, error) {
	slot, ok := t.m.slots[slotID]
	if !ok {
		return nil, response.ErrNotFound
	}

	tutor := t.m.tutors[slot.TutorID]
	if !slot.IsBooked && (tutor == nil || tutor.Subject != subject) {
		return nil, response.ErrSubjectMismatch
	}
	if slot.IsBooked {
		return nil, response.ErrAlreadyBooked
	}

	slot.IsBooked = true
	out := *slot

	return &out, nil
}

func (t *memTx) ReleaseSlot(_ context.Context, slotID string) error {
	if slot, ok := t.m.slots[slotID]; ok {
		slot.IsBooked = false
	}
	return nil
}

func (t *memTx) CreateMeeting(_ context.Context, meeting *models.Meeting) (string, error) {
	if t.m.createMeetingErr != nil {
		return "", t.m.createMeetingErr
	}
	if _, ok := t.m.students[meeting.StudentID]; !ok {
		return "", response.ErrNotFound
	}
	for _, existing := range t.m.meetings {
		if existing.AvailabilitySlotID == meeting.AvailabilitySlotID && existing.Status == models.MeetingScheduled {
			return "", response.ErrAlreadyExists
		}
	}

	meeting.ID = uuid.NewString()
	meeting.CreatedAt = time.Now()
	stored := *meeting
	t.m.meetings[meeting.ID] = &stored

	return meeting.ID, nil
}

func (t *memTx) CancelMeeting(_ context.Context, meetingID string) (bool, string, error) {
	mt, ok := t.m.meetings[meetingID]
	if !ok || mt.Status != models.MeetingScheduled {
		return false, "", nil
	}

	mt.Status = models.MeetingCancelled

	return true, mt.AvailabilitySlotID, nil
}

// Accounts

func (m *memStore) CreateStudent(_ context.Context, s *models.Student) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.students {
		if other.Email == strings.ToLower(s.Email) {
			return "", response.ErrAlreadyExists
		}
	}

	s.ID = uuid.NewString()
	s.Email = strings.ToLower(s.Email)
	stored := *s
	m.students[s.ID] = &stored

	return s.ID, nil
}

func (m *memStore) CreateTutor(_ context.Context, t *models.Tutor) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.tutors {
		if other.Email == strings.ToLower(t.Email) {
			return "", response.ErrAlreadyExists
		}
	}

	t.ID = uuid.NewString()
	t.Email = strings.ToLower(t.Email)
	stored := *t
	m.tutors[t.ID] = &stored

	return t.ID, nil
}

func (m *memStore) account(role models.Role, match func(id, email string) bool) (*models.Account, error) {
	switch role {
	case models.RoleStudent:
		for _, s := range m.students {
			if match(s.ID, s.Email) {
				return &models.Account{ID: s.ID, Role: role, Name: s.Name, Email: s.Email, PasswordHash: s.PasswordHash, Class: s.Class}, nil
			}
		}
	case models.RoleTutor:
		for _, t := range m.tutors {
			if match(t.ID, t.Email) {
				return &models.Account{ID: t.ID, Role: role, Name: t.Name, Email: t.Email, PasswordHash: t.PasswordHash, Subject: t.Subject}, nil
			}
		}
	default:
		return nil, response.ErrBadRequest
	}
	return nil, response.ErrNotFound
}

func (m *memStore) GetAccount(_ context.Context, role models.Role, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.account(role, func(got, _ string) bool { return got == id })
}

func (m *memStore) GetAccountByEmail(_ context.Context, role models.Role, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	return m.account(role, func(_, got string) bool { return got == email })
}

func (m *memStore) TouchLastLogin(_ context.Context, role models.Role, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if role == models.RoleTutor {
		if t, ok := m.tutors[id]; ok {
			t.LastLogin = &at
		}
		return nil
	}
	if s, ok := m.students[id]; ok {
		s.LastLogin = &at
	}
	return nil
}

// Availability

func (m *memStore) CreateSlots(_ context.Context, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if _, ok := m.tutors[s.TutorID]; !ok {
			return nil, response.ErrNotFound
		}
		s.ID = uuid.NewString()
		s.CreatedAt = time.Now()
		stored := s
		m.slots[s.ID] = &stored
		out = append(out, s)
	}

	return out, nil
}

func (m *memStore) ListSlotsByTutor(_ context.Context, tutorID string, from time.Time, onlyFree bool) ([]models.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.AvailabilitySlot, 0)
	for _, s := range m.slots {
		if s.TutorID != tutorID || s.Date.Before(from) || (onlyFree && s.IsBooked) {
			continue
		}
		out = append(out, *s)
	}
	sortSlots(out)

	return out, nil
}

func (m *memStore) ListFreeSlotsBySubject(_ context.Context, subject models.Subject, from time.Time) ([]models.SlotView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slots := make([]models.AvailabilitySlot, 0)
	for _, s := range m.slots {
		t := m.tutors[s.TutorID]
		if t == nil || t.Subject != subject || s.IsBooked || s.Date.Before(from) {
			continue
		}
		slots = append(slots, *s)
	}
	sortSlots(slots)

	out := make([]models.SlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, models.SlotView{AvailabilitySlot: s, Tutor: m.tutorRef(s.TutorID)})
	}

	return out, nil
}

func sortSlots(slots []models.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

func (m *memStore) DeleteFreeSlot(_ context.Context, id, tutorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	switch {
	case !ok:
		return response.ErrNotFound
	case s.TutorID != tutorID:
		return response.ErrForbidden
	case s.IsBooked:
		return response.ErrSlotBooked
	}

	delete(m.slots, id)

	return nil
}

// Meetings

func (m *memStore) meetingView(mt *models.Meeting) *models.MeetingView {
	return &models.MeetingView{
		Meeting: *mt,
		Student: m.studentRef(mt.StudentID),
		Tutor:   m.tutorRef(mt.TutorID),
	}
}

func (m *memStore) GetMeeting(_ context.Context, id string) (*models.MeetingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.meetings[id]
	if !ok {
		return nil, fmt.Errorf("memStore.GetMeeting: %w", response.ErrNotFound)
	}

	return m.meetingView(mt), nil
}

func (m *memStore) listMeetings(match func(*models.Meeting) bool) []models.MeetingView {
	out := make([]models.MeetingView, 0)
	for _, mt := range m.meetings {
		if match(mt) {
			out = append(out, *m.meetingView(mt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out
}

func (m *memStore) ListMeetingsByStudent(_ context.Context, studentID string) ([]models.MeetingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listMeetings(func(mt *models.Meeting) bool { return mt.StudentID == studentID }), nil
}

func (m *memStore) ListMeetingsByTutor(_ context.Context, tutorID string) ([]models.MeetingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listMeetings(func(mt *models.Meeting) bool { return mt.TutorID == tutorID }), nil
}

func (m *memStore) CompleteMeeting(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.meetings[id]
	if !ok || mt.Status != models.MeetingScheduled {
		return false, nil
	}
	mt.Status = models.MeetingCompleted

	return true, nil
}

// Questions

func (m *memStore) questionView(q *models.Question) *models.QuestionView {
	view := &models.QuestionView{Question: *q, Student: m.studentRef(q.StudentID)}
	if q.AnsweredBy != nil {
		view.Tutor = m.tutorRef(*q.AnsweredBy)
	}
	return view
}

func (m *memStore) CreateQuestion(_ context.Context, q *models.Question) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[q.StudentID]; !ok {
		return "", response.ErrNotFound
	}

	q.ID = uuid.NewString()
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	stored := *q
	m.questions[q.ID] = &stored

	return q.ID, nil
}

func (m *memStore) GetQuestion(_ context.Context, id string) (*models.QuestionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[id]
	if !ok {
		return nil, response.ErrNotFound
	}

	return m.questionView(q), nil
}

func (m *memStore) listQuestions(match func(*models.Question) bool, newer func(a, b *models.Question) bool) []models.QuestionView {
	qs := make([]*models.Question, 0)
	for _, q := range m.questions {
		if match(q) {
			qs = append(qs, q)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return newer(qs[i], qs[j]) })

	out := make([]models.QuestionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, *m.questionView(q))
	}
	return out
}

func newerCreated(a, b *models.Question) bool { return a.CreatedAt.After(b.CreatedAt) }

func (m *memStore) ListOpenQuestions(_ context.Context, subject models.Subject) ([]models.QuestionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listQuestions(func(q *models.Question) bool {
		return q.Subject == subject && !q.IsAnswered && !q.IsBeingAnswered
	}, newerCreated), nil
}

func (m *memStore) ListQuestionsByStudent(_ context.Context, studentID string) ([]models.QuestionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listQuestions(func(q *models.Question) bool { return q.StudentID == studentID }, newerCreated), nil
}

func (m *memStore) ListAnsweredByTutor(_ context.Context, tutorID string) ([]models.QuestionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listQuestions(func(q *models.Question) bool {
		return q.IsAnswered && q.AnsweredBy != nil && *q.AnsweredBy == tutorID
	}, func(a, b *models.Question) bool { return a.AnsweredAt.After(*b.AnsweredAt) }), nil
}

func (m *memStore) ClaimQuestion(_ context.Context, id, tutorID string, at time.Time) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	if q.IsBeingAnswered || q.IsAnswered {
		return nil, response.ErrAlreadyClaimed
	}

	q.IsBeingAnswered = true
	q.AnsweredBy = &tutorID
	q.ClaimedAt = &at
	q.UpdatedAt = at
	out := *q

	return &out, nil
}

func (m *memStore) AnswerQuestion(_ context.Context, id, tutorID, text string, images []string, at time.Time) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	if !q.ClaimedBy(tutorID) {
		return nil, response.ErrForbidden
	}

	q.IsAnswered = true
	q.IsBeingAnswered = false
	q.AnswerText = &text
	q.AnswerImages = images
	q.AnsweredAt = &at
	q.UpdatedAt = at
	out := *q

	return &out, nil
}

func (m *memStore) studentRef(id string) *models.UserRef {
	s, ok := m.students[id]
	if !ok {
		return nil
	}
	return &models.UserRef{ID: s.ID, Name: s.Name, Email: s.Email, Class: s.Class, College: s.College}
}

func (m *memStore) tutorRef(id string) *models.UserRef {
	t, ok := m.tutors[id]
	if !ok {
		return nil
	}
	return &models.UserRef{ID: t.ID, Name: t.Name, Email: t.Email, Subject: t.Subject}
}

// test seeding, bypasses validation

func (m *memStore) addTutor(name string, subject models.Subject) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.tutors[id] = &models.Tutor{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com", Subject: subject}
	return id
}

func (m *memStore) addStudent(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.students[id] = &models.Student{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com", Class: "12"}
	return id
}

func (m *memStore) slot(id string) models.AvailabilitySlot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *m.slots[id]
}

func (m *memStore) meetingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.meetings)
}
