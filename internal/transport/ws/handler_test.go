package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vedran77/syncspace/internal/access"
	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/identity"
	"github.com/vedran77/syncspace/internal/realtime"
	"github.com/vedran77/syncspace/internal/repository/memory"
	"github.com/vedran77/syncspace/internal/service"
)

const testSecret = "test-secret"

type stack struct {
	server        *httptest.Server
	manager       *realtime.Manager
	membership    *memory.Membership
	rooms         *memory.RoomRepo
	notifications *service.NotificationService
}

func newStack(t *testing.T) *stack {
	t.Helper()

	rooms := memory.NewRoomRepo()
	membership := memory.NewMembership()
	validator := access.NewValidator(membership, rooms)

	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, nil)
	notifier := NewHubNotifier(dispatcher)

	chat := service.NewChatService(rooms, memory.NewMessageRepo(), validator, service.ChatConfig{}, nil)
	chat.SetNotifier(notifier)
	notifications := service.NewNotificationService(memory.NewNotificationRepo(), nil)
	notifications.SetNotifier(notifier)

	manager := realtime.NewManager(registry, dispatcher, validator, chat, nil)
	extractor := identity.NewExtractor(testSecret, []string{"/chatHub", "/notificationHub"}, nil)
	h := NewHandler(manager, extractor, Options{}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/chatHub", h.ServeChat)
	mux.HandleFunc("/notificationHub", h.ServeNotifications)

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		_ = manager.Shutdown(context.Background())
		srv.Close()
	})

	return &stack{
		server:        srv,
		manager:       manager,
		membership:    membership,
		rooms:         rooms,
		notifications: notifications,
	}
}

func (s *stack) room(t *testing.T, projectID int64) int64 {
	t.Helper()
	room := &domain.ChatRoom{ProjectID: projectID, Name: "general"}
	require.NoError(t, s.rooms.Create(context.Background(), room))
	return room.ID
}

func token(t *testing.T, userID int64, name string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"name": name,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func (s *stack) dial(t *testing.T, path string, userID int64, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + path + "?access_token=" + token(t, userID, name)
	conn, _, err := websocket.Dial(t.Context(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, realtime.Event{Type: eventType, Payload: data}))
}

func read(t *testing.T, conn *websocket.Conn) realtime.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	var evt realtime.Event
	require.NoError(t, wsjson.Read(ctx, conn, &evt))
	return evt
}

// expectQuiet checks nothing is queued ahead of a pong.
func expectQuiet(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	send(t, conn, EventTypePing, nil)
	assert.Equal(t, realtime.EventPong, read(t, conn).Type)
}

func decode[T any](t *testing.T, evt realtime.Event) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(evt.Payload, &v))
	return v
}

func TestServe_RejectsMissingOrBadToken(t *testing.T) {
	s := newStack(t)
	base := "ws" + strings.TrimPrefix(s.server.URL, "http")

	for _, url := range []string{base + "/chatHub", base + "/notificationHub?access_token=garbage"} {
		_, resp, err := websocket.Dial(t.Context(), url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Equal(t, 0, s.manager.Count())
}

func TestChatHub_RoomScenario(t *testing.T) {
	s := newStack(t)
	roomID := s.room(t, 7)
	s.membership.Set(7, 1, domain.RoleMember)
	s.membership.Set(7, 2, domain.RoleMember)

	a := s.dial(t, "/chatHub", 1, "Alice")
	b := s.dial(t, "/chatHub", 2, "Bob")
	c := s.dial(t, "/chatHub", 3, "Carol")

	send(t, a, EventTypeJoinGroup, RoomPayload{RoomID: roomID})
	joined := read(t, a)
	assert.Equal(t, realtime.EventUserJoined, joined.Type)
	assert.Equal(t, "Alice", decode[realtime.PresencePayload](t, joined).DisplayName)

	send(t, b, EventTypeJoinGroup, RoomPayload{RoomID: roomID})
	assert.Equal(t, realtime.EventUserJoined, read(t, b).Type)
	assert.Equal(t, "Bob", decode[realtime.PresencePayload](t, read(t, a)).DisplayName)

	send(t, c, EventTypeJoinGroup, RoomPayload{RoomID: roomID})
	refused := read(t, c)
	require.Equal(t, realtime.EventError, refused.Type)
	assert.Equal(t, CodeUnauthorized, decode[realtime.ErrorPayload](t, refused).Code)

	send(t, a, EventTypeSendMessage, SendMessagePayload{RoomID: roomID, Content: "hi"})
	for _, conn := range []*websocket.Conn{a, b} {
		evt := read(t, conn)
		require.Equal(t, realtime.EventReceiveMessage, evt.Type)
		msg := decode[domain.ChatMessage](t, evt)
		assert.Equal(t, "hi", msg.Content)
		assert.Equal(t, "Alice", msg.SenderName)
	}

	send(t, c, EventTypeSendMessage, SendMessagePayload{RoomID: roomID, Content: "sneaky"})
	assert.Equal(t, CodeUnauthorized, decode[realtime.ErrorPayload](t, read(t, c)).Code)

	expectQuiet(t, a)
	expectQuiet(t, b)
	expectQuiet(t, c)
}

func TestChatHub_DisconnectAnnouncesLeave(t *testing.T) {
	s := newStack(t)
	roomID := s.room(t, 7)
	s.membership.Set(7, 1, domain.RoleMember)
	s.membership.Set(7, 2, domain.RoleMember)

	a := s.dial(t, "/chatHub", 1, "Alice")
	b := s.dial(t, "/chatHub", 2, "Bob")

	send(t, a, EventTypeJoinGroup, RoomPayload{RoomID: roomID})
	read(t, a)
	send(t, b, EventTypeJoinGroup, RoomPayload{RoomID: roomID})
	read(t, b)
	read(t, a)

	require.NoError(t, a.Close(websocket.StatusNormalClosure, ""))

	left := read(t, b)
	require.Equal(t, realtime.EventUserLeft, left.Type)
	assert.Equal(t, int64(1), decode[realtime.PresencePayload](t, left).UserID)

	require.Eventually(t, func() bool { return s.manager.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestChatHub_InvalidInput(t *testing.T) {
	s := newStack(t)
	roomID := s.room(t, 7)
	s.membership.Set(7, 1, domain.RoleMember)
	a := s.dial(t, "/chatHub", 1, "Alice")

	send(t, a, EventTypeJoinGroup, map[string]string{"roomId": "nope"})
	assert.Equal(t, CodeInvalidPayload, decode[realtime.ErrorPayload](t, read(t, a)).Code)

	send(t, a, "Typing", nil)
	assert.Equal(t, CodeUnknownEvent, decode[realtime.ErrorPayload](t, read(t, a)).Code)

	send(t, a, EventTypeSendMessage, SendMessagePayload{RoomID: roomID, Content: "  "})
	assert.Equal(t, CodeValidation, decode[realtime.ErrorPayload](t, read(t, a)).Code)

	send(t, a, EventTypeJoinGroup, RoomPayload{RoomID: 999})
	assert.Equal(t, CodeRoomNotFound, decode[realtime.ErrorPayload](t, read(t, a)).Code)
}

func TestNotificationHub_ReceivesNotifications(t *testing.T) {
	s := newStack(t)
	conn := s.dial(t, "/notificationHub", 42, "Ana")
	chatConn := s.dial(t, "/chatHub", 42, "Ana")

	// Wait until both sessions are registered.
	require.Eventually(t, func() bool { return s.manager.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	ref := "task:7"
	_, err := s.notifications.Deliver(t.Context(), 42, service.DeliverInput{
		Message:     "Task assigned",
		Type:        domain.NotificationTaskAssigned,
		ReferenceID: &ref,
	})
	require.NoError(t, err)

	for _, c := range []*websocket.Conn{conn, chatConn} {
		evt := read(t, c)
		require.Equal(t, realtime.EventReceiveNotification, evt.Type)
		n := decode[domain.Notification](t, evt)
		assert.Equal(t, "Task assigned", n.Message)
		assert.Equal(t, "task:7", *n.ReferenceID)
	}

	send(t, conn, EventTypeJoinGroup, RoomPayload{RoomID: 1})
	assert.Equal(t, CodeUnknownEvent, decode[realtime.ErrorPayload](t, read(t, conn)).Code)
}

func TestManagerShutdown_ClosesSockets(t *testing.T) {
	s := newStack(t)
	conn := s.dial(t, "/notificationHub", 1, "Ana")
	require.Eventually(t, func() bool { return s.manager.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.manager.Shutdown(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestManagerShutdown_RefusesNewSessions(t *testing.T) {
	s := newStack(t)
	require.NoError(t, s.manager.Shutdown(t.Context()))

	conn := s.dial(t, "/chatHub", 1, "Ana")
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	assert.Equal(t, 0, s.manager.Count())
}
