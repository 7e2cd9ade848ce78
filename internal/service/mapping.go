package service

import (
	"qanda-service/api"
	"qanda-service/internal/models"
)

const dateLayout = "2006-01-02"

func toPersonRef(ref *models.UserRef) *api.PersonRef {
	if ref == nil {
		return nil
	}

	return &api.PersonRef{
		ID:      ref.ID,
		Name:    ref.Name,
		Email:   ref.Email,
		Subject: string(ref.Subject),
		Class:   ref.Class,
		College: ref.College,
	}
}

func toSlotResponse(slot *models.AvailabilitySlot, tutor *models.UserRef) api.SlotResponse {
	return api.SlotResponse{
		ID:        slot.ID,
		TutorID:   slot.TutorID,
		Tutor:     toPersonRef(tutor),
		Date:      slot.Date.Format(dateLayout),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Duration:  slot.Duration,
		IsBooked:  slot.IsBooked,
	}
}

func toMeetingResponse(view *models.MeetingView) *api.MeetingResponse {
	m := view.Meeting
	return &api.MeetingResponse{
		ID:                 m.ID,
		StudentID:          m.StudentID,
		TutorID:            m.TutorID,
		Student:            toPersonRef(view.Student),
		Tutor:              toPersonRef(view.Tutor),
		Subject:            string(m.Subject),
		Topic:              m.Topic,
		ScheduledAt:        m.ScheduledAt,
		Duration:           m.Duration,
		MeetLink:           m.MeetLink,
		Status:             string(m.Status),
		AvailabilitySlotID: m.AvailabilitySlotID,
		CreatedAt:          m.CreatedAt,
	}
}

func toQuestionResponse(view *models.QuestionView) *api.QuestionResponse {
	q := view.Question

	images := q.QuestionImages
	if images == nil {
		images = []string{}
	}
	answerImages := q.AnswerImages
	if answerImages == nil {
		answerImages = []string{}
	}

	return &api.QuestionResponse{
		ID:              q.ID,
		StudentID:       q.StudentID,
		Student:         toPersonRef(view.Student),
		Subject:         string(q.Subject),
		QuestionText:    q.QuestionText,
		QuestionImages:  images,
		IsBeingAnswered: q.IsBeingAnswered,
		AnsweredBy:      q.AnsweredBy,
		Tutor:           toPersonRef(view.Tutor),
		IsAnswered:      q.IsAnswered,
		ClaimedAt:       q.ClaimedAt,
		AnswerText:      q.AnswerText,
		AnswerImages:    answerImages,
		AnsweredAt:      q.AnsweredAt,
		CreatedAt:       q.CreatedAt,
	}
}

func toQuestionResponses(views []models.QuestionView) []api.QuestionResponse {
	out := make([]api.QuestionResponse, 0, len(views))
	for i := range views {
		out = append(out, *toQuestionResponse(&views[i]))
	}
	return out
}

func toUserResponse(acc *models.Account) api.UserResponse {
	return api.UserResponse{
		ID:      acc.ID,
		Role:    string(acc.Role),
		Name:    acc.Name,
		Email:   acc.Email,
		Subject: string(acc.Subject),
		Class:   acc.Class,
	}
}
