package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qanda-service/api"
	"qanda-service/internal/auth"
	"qanda-service/internal/config"
	"qanda-service/internal/models"
	"qanda-service/internal/notify"
	"qanda-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService answers the few calls these tests reach. Anything else panics through the nil
// embedded interface.
type stubService struct {
	Service

	scheduleErr error
	lastKey     string
}

func (s *stubService) ScheduleMeeting(_ context.Context, studentID string, req *api.ScheduleRequest, key string) (*api.MeetingResponse, error) {
	s.lastKey = key
	if s.scheduleErr != nil {
		return nil, s.scheduleErr
	}
	return &api.MeetingResponse{ID: "m1", StudentID: studentID, Subject: req.Subject, Status: "scheduled"}, nil
}

func (s *stubService) ListAvailableSlots(_ context.Context, subject string) ([]api.SlotResponse, error) {
	return []api.SlotResponse{{ID: "s1", Date: "2025-06-01", Tutor: &api.PersonRef{Name: subject}}}, nil
}

type fixture struct {
	handler http.Handler
	svc     *stubService
	tokens  *auth.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{CORSOrigin: "http://localhost:5173"}
	cfg.Auth.TokenTTL = time.Hour

	tokens := auth.NewManager("secret", time.Hour)
	svc := &stubService{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		handler: newRouter(log, cfg, svc, tokens, notify.NewRegistry()),
		svc:     svc,
		tokens:  tokens,
	}
}

func (f *fixture) do(t *testing.T, method, path string, role models.Role, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Idempotency-Key", "abc")

	if role != "" {
		token, _, err := f.tokens.Issue(auth.Identity{ID: "11111111-2222-3333-4444-555555555555", Role: role})
		require.NoError(t, err)
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, r)

	return rr
}

func scheduleBody() api.ScheduleRequest {
	return api.ScheduleRequest{
		Subject:            "Maths",
		Topic:              "Algebra",
		AvailabilitySlotID: "9b0c3a4e-8f1d-4a7b-9c2e-1d3f5a7b9c0e",
	}
}

func TestRoutes_RoleGating(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   models.Role
		status int
	}{
		{name: "schedule anonymous", method: http.MethodPost, path: "/meetings", status: http.StatusUnauthorized},
		{name: "schedule as tutor", method: http.MethodPost, path: "/meetings", role: models.RoleTutor, status: http.StatusForbidden},
		{name: "claim as student", method: http.MethodPatch, path: "/questions/q1/claim", role: models.RoleStudent, status: http.StatusForbidden},
		{name: "post question as tutor", method: http.MethodPost, path: "/questions", role: models.RoleTutor, status: http.StatusForbidden},
		{name: "availability as student", method: http.MethodPost, path: "/availability", role: models.RoleStudent, status: http.StatusForbidden},
		{name: "me anonymous", method: http.MethodGet, path: "/auth/me", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, tt.method, tt.path, tt.role, scheduleBody())
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRoutes_Schedule(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/meetings", models.RoleStudent, scheduleBody())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "abc", f.svc.lastKey)

	var body struct {
		Meeting api.MeetingResponse `json:"meeting"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "m1", body.Meeting.ID)
	assert.Equal(t, "scheduled", body.Meeting.Status)
}

func TestRoutes_ScheduleErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{name: "already booked", err: response.ErrAlreadyBooked, status: http.StatusConflict, code: response.ALREADY_BOOKED},
		{name: "subject mismatch", err: response.ErrSubjectMismatch, status: http.StatusConflict, code: response.SUBJECT_MISMATCH},
		{name: "not found", err: response.ErrNotFound, status: http.StatusNotFound, code: response.NOT_FOUND},
		{name: "locked", err: response.ErrLocked, status: http.StatusLocked, code: response.LOCKED},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.svc.scheduleErr = tt.err

			rr := f.do(t, http.MethodPost, "/meetings", models.RoleStudent, scheduleBody())
			assert.Equal(t, tt.status, rr.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, string(tt.code), body.Code)
		})
	}
}

func TestRoutes_ScheduleValidation(t *testing.T) {
	f := newFixture(t)

	req := scheduleBody()
	req.Subject = "Chemistry"
	req.AvailabilitySlotID = "not-a-uuid"

	rr := f.do(t, http.MethodPost, "/meetings", models.RoleStudent, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, string(response.INVALID_INPUT), body.Code)
	assert.Contains(t, body.Message, "not a valid subject")
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/meetings/available-slots/Computer%20Science", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Computer Science"`)

	rr = f.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","connections":0}`, rr.Body.String())

	rr = f.do(t, http.MethodOptions, "/meetings", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
