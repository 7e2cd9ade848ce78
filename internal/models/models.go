package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}

type Subject string

const (
	SubjectMaths           Subject = "Maths"
	SubjectComputerScience Subject = "Computer Science"
	SubjectDSA             Subject = "DSA"
	SubjectDevelopment     Subject = "Development"
	SubjectMERN            Subject = "MERN"
	SubjectSpringBoot      Subject = "Spring Boot"
)

var Subjects = []Subject{
	SubjectMaths,
	SubjectComputerScience,
	SubjectDSA,
	SubjectDevelopment,
	SubjectMERN,
	SubjectSpringBoot,
}

func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

type Student struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PhoneNumber  string     `db:"phone_number"`
	PasswordHash string     `db:"password_hash"`
	Class        string     `db:"class"`
	College      string     `db:"college"`
	IsVerified   bool       `db:"is_verified"`
	LastLogin    *time.Time `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
}

type Tutor struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PhoneNumber  string     `db:"phone_number"`
	PasswordHash string     `db:"password_hash"`
	Subject      Subject    `db:"subject"`
	College      string     `db:"college"`
	IsVerified   bool       `db:"is_verified"`
	LastLogin    *time.Time `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Account is the credential-bearing projection shared by both roles.
type Account struct {
	ID           string
	Role         Role
	Name         string
	Email        string
	PasswordHash string
	Subject      Subject
	Class        string
}

// UserRef is the populated display form of a student or tutor.
type UserRef struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Subject Subject `json:"subject,omitempty"`
	Class   string  `json:"class,omitempty"`
	College string  `json:"college,omitempty"`
}

type AvailabilitySlot struct {
	ID        string    `db:"id"`
	TutorID   string    `db:"tutor_id"`
	Date      time.Time `db:"date"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	Duration  int       `db:"duration"`
	IsBooked  bool      `db:"is_booked"`
	CreatedAt time.Time `db:"created_at"`
}

type SlotView struct {
	AvailabilitySlot
	Tutor *UserRef
}

type Meeting struct {
	ID                 string        `db:"id"`
	StudentID          string        `db:"student_id"`
	TutorID            string        `db:"tutor_id"`
	Subject            Subject       `db:"subject"`
	Topic              string        `db:"topic"`
	ScheduledAt        time.Time     `db:"scheduled_at"`
	Duration           int           `db:"duration"`
	MeetLink           string        `db:"meet_link"`
	Status             MeetingStatus `db:"status"`
	AvailabilitySlotID string        `db:"availability_slot_id"`
	CreatedAt          time.Time     `db:"created_at"`
}

type MeetingView struct {
	Meeting
	Student *UserRef
	Tutor   *UserRef
}

type Question struct {
	ID              string     `db:"id"`
	StudentID       string     `db:"student_id"`
	Subject         Subject    `db:"subject"`
	QuestionText    string     `db:"question_text"`
	QuestionImages  []string   `db:"question_images"`
	IsBeingAnswered bool       `db:"is_being_answered"`
	AnsweredBy      *string    `db:"answered_by"`
	IsAnswered      bool       `db:"is_answered"`
	ClaimedAt       *time.Time `db:"claimed_at"`
	AnswerText      *string    `db:"answer_text"`
	AnswerImages    []string   `db:"answer_images"`
	AnsweredAt      *time.Time `db:"answered_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// ClaimedBy reports whether the question is currently held by tutorID.
func (q *Question) ClaimedBy(tutorID string) bool {
	return q.IsBeingAnswered && q.AnsweredBy != nil && *q.AnsweredBy == tutorID
}

type QuestionView struct {
	Question
	Student *UserRef
	Tutor   *UserRef
}
