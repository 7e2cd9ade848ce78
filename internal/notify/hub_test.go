package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qanda-service/internal/auth"
	"qanda-service/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	*httptest.Server
	registry *Registry
	hub      *Hub
	tokens   *auth.Manager
}

func newServer(t *testing.T) *server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := NewRegistry()
	tokens := auth.NewManager("secret", time.Hour)

	srv := httptest.NewServer(NewHandler(log, registry, tokens, func(*http.Request) bool { return true }))
	t.Cleanup(srv.Close)

	return &server{Server: srv, registry: registry, hub: NewHub(registry, log), tokens: tokens}
}

func (s *server) dial(t *testing.T, role models.Role) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(s.URL, "http")
	if role != "" {
		token, _, err := s.tokens.Issue(auth.Identity{ID: string(role) + "-1", Role: role})
		require.NoError(t, err)
		url += "?token=" + token
	}

	before := s.registry.Count()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return s.registry.Count() == before+1 }, time.Second, 5*time.Millisecond)

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var f Frame
	require.NoError(t, conn.ReadJSON(&f))

	return f
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestHub_RoleScopedDelivery(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	tutor := s.dial(t, models.RoleTutor)
	student := s.dial(t, models.RoleStudent)
	guest := s.dial(t, "")

	require.NoError(t, s.hub.Publish(ctx, AudienceTutors, EventClaimedQuestion, QuestionClaimed{QuestionID: "q1"}))
	require.NoError(t, s.hub.Publish(ctx, AudienceBroadcast, EventMeetingCancelled, MeetingCancelled{MeetingID: "m1"}))

	f := readFrame(t, tutor)
	assert.Equal(t, EventClaimedQuestion, f.Event)
	assert.JSONEq(t, `{"questionId":"q1"}`, string(f.Data))

	// the student's first frame is the broadcast, the tutor event never reached it
	for _, conn := range []*websocket.Conn{tutor, student} {
		f := readFrame(t, conn)
		assert.Equal(t, EventMeetingCancelled, f.Event)
		assert.JSONEq(t, `{"meetingId":"m1"}`, string(f.Data))
	}

	expectSilence(t, guest)
}

func TestHub_PreservesOrder(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	student := s.dial(t, models.RoleStudent)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.hub.Publish(ctx, AudienceStudents, EventMeetingScheduled, map[string]int{"n": i}))
	}

	for i := 0; i < 20; i++ {
		f := readFrame(t, student)

		var got map[string]int
		require.NoError(t, json.Unmarshal(f.Data, &got))
		assert.Equal(t, i, got["n"])
	}
}

func TestHandler_UnregistersOnDisconnect(t *testing.T) {
	s := newServer(t)

	conn := s.dial(t, models.RoleTutor)
	require.Equal(t, 1, s.registry.Count())

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return s.registry.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRedisBroker_HandleDeliversEnvelope(t *testing.T) {
	s := newServer(t)
	tutor := s.dial(t, models.RoleTutor)

	b := NewRedisBroker(nil, "", s.hub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, DefaultChannel, b.channel)

	msg, err := json.Marshal(Envelope{Audience: AudienceTutors, Event: EventNewQuestion, Data: json.RawMessage(`{"message":"New question posted!"}`)})
	require.NoError(t, err)

	b.handle("{broken")
	b.handle(string(msg))

	f := readFrame(t, tutor)
	assert.Equal(t, EventNewQuestion, f.Event)
	assert.JSONEq(t, `{"message":"New question posted!"}`, string(f.Data))
}

func TestRedisBroker_RejectsUnknownAudience(t *testing.T) {
	b := NewRedisBroker(nil, "", nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := b.Publish(context.Background(), "everyone", EventNewQuestion, nil)
	assert.ErrorIs(t, err, ErrUnknownAudience)
}
