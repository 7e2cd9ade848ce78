package api

import "time"

// Auth

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required,min=6"`
	Subject     string `json:"subject,omitempty" validate:"omitempty,subject"`
	Class       string `json:"class,omitempty" validate:"omitempty,max=50"`
	College     string `json:"college,omitempty" validate:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Class   string `json:"class,omitempty"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Availability

type SlotRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	Duration  int    `json:"duration,omitempty" validate:"omitempty,min=1,max=480"`
}

type SetAvailabilityRequest struct {
	Slots []SlotRequest `json:"slots" validate:"required,min=1,dive"`
}

type PersonRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Subject string `json:"subject,omitempty"`
	Class   string `json:"class,omitempty"`
	College string `json:"college,omitempty"`
}

type SlotResponse struct {
	ID        string     `json:"id"`
	TutorID   string     `json:"tutor_id"`
	Tutor     *PersonRef `json:"tutor,omitempty"`
	Date      string     `json:"date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Duration  int        `json:"duration"`
	IsBooked  bool       `json:"is_booked"`
}

// Meetings

type ScheduleRequest struct {
	Subject            string `json:"subject" validate:"required,subject"`
	Topic              string `json:"topic" validate:"required,max=200"`
	AvailabilitySlotID string `json:"availability_slot_id" validate:"required,uuid"`
}

type MeetingResponse struct {
	ID                 string     `json:"id"`
	StudentID          string     `json:"student_id"`
	TutorID            string     `json:"tutor_id"`
	Student            *PersonRef `json:"student,omitempty"`
	Tutor              *PersonRef `json:"tutor,omitempty"`
	Subject            string     `json:"subject"`
	Topic              string     `json:"topic"`
	ScheduledAt        time.Time  `json:"scheduled_at"`
	Duration           int        `json:"duration"`
	MeetLink           string     `json:"meet_link"`
	Status             string     `json:"status"`
	AvailabilitySlotID string     `json:"availability_slot_id"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Questions

type PostQuestionRequest struct {
	Subject        string   `json:"subject" validate:"required,subject"`
	QuestionText   string   `json:"question_text" validate:"required,min=10,max=1000"`
	QuestionImages []string `json:"question_images,omitempty" validate:"max=5,dive,required"`
}

type AnswerRequest struct {
	AnswerText   string   `json:"answer_text" validate:"required"`
	AnswerImages []string `json:"answer_images,omitempty" validate:"max=10,dive,required"`
}

type QuestionResponse struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"student_id"`
	Student         *PersonRef `json:"student,omitempty"`
	Subject         string     `json:"subject"`
	QuestionText    string     `json:"question_text"`
	QuestionImages  []string   `json:"question_images"`
	IsBeingAnswered bool       `json:"is_being_answered"`
	AnsweredBy      *string    `json:"answered_by"`
	Tutor           *PersonRef `json:"tutor,omitempty"`
	IsAnswered      bool       `json:"is_answered"`
	ClaimedAt       *time.Time `json:"claimed_at"`
	AnswerText      *string    `json:"answer_text"`
	AnswerImages    []string   `json:"answer_images"`
	AnsweredAt      *time.Time `json:"answered_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type MyQuestionsResponse struct {
	Unanswered []QuestionResponse `json:"unanswered_questions"`
	Answered   []QuestionResponse `json:"answered_questions"`
}
