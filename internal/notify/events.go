package notify

import (
	"context"
	"encoding/json"
)

// Audience selects which live connections receive an event.
type Audience string

const (
	AudienceTutors    Audience = "tutors"
	AudienceStudents  Audience = "students"
	AudienceBroadcast Audience = "broadcast"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceTutors, AudienceStudents, AudienceBroadcast:
		return true
	}
	return false
}

const (
	EventNewMeeting       = "new-meeting"
	EventMeetingScheduled = "meeting-scheduled"
	EventMeetingCancelled = "meeting-cancelled"
	EventNewQuestion      = "new-question"
	EventClaimedQuestion  = "claimed-question"
	EventQuestionAnswered = "question-answered"
)

// Frame is what a websocket client receives.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Envelope carries a frame between instances.
type Envelope struct {
	Audience Audience        `json:"audience"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, audience Audience, event string, payload any) error
}

func encodeFrame(event string, data json.RawMessage) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: data})
}

type MeetingCancelled struct {
	MeetingID string `json:"meetingId"`
}

type NewQuestion struct {
	Question any    `json:"question"`
	Message  string `json:"message"`
}

type QuestionClaimed struct {
	QuestionID string `json:"questionId"`
}

type QuestionAnswered struct {
	QuestionID string `json:"questionId"`
	StudentID  string `json:"studentId"`
}
