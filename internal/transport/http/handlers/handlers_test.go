package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/syncspace/internal/access"
	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/identity"
	"github.com/vedran77/syncspace/internal/realtime"
	"github.com/vedran77/syncspace/internal/repository/memory"
	"github.com/vedran77/syncspace/internal/service"
	"github.com/vedran77/syncspace/internal/transport/http/middleware"
)

const (
	testSecret     = "test-secret"
	testServiceKey = "service-key"
	project        = int64(7)
)

type api struct {
	mux        *http.ServeMux
	membership *memory.Membership
	chat       *service.ChatService
}

func newAPI(t *testing.T) *api {
	t.Helper()
	rooms := memory.NewRoomRepo()
	membership := memory.NewMembership()
	validator := access.NewValidator(membership, rooms)

	chat := service.NewChatService(rooms, memory.NewMessageRepo(), validator, service.ChatConfig{}, nil)
	notifications := service.NewNotificationService(memory.NewNotificationRepo(), nil)

	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, nil)
	manager := realtime.NewManager(registry, dispatcher, validator, chat, nil)

	mux := http.NewServeMux()
	Routes{
		Auth:          middleware.Auth(identity.NewExtractor(testSecret, nil, nil)),
		ServiceKey:    middleware.ServiceKey(testServiceKey),
		Chat:          NewChatHandler(chat, validator, nil),
		Notifications: NewNotificationHandler(notifications, nil),
		Internal:      NewInternalHandler(notifications, manager, nil),
	}.Register(mux)

	return &api{mux: mux, membership: membership, chat: chat}
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"name": "user" + strconv.FormatInt(userID, 10),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

// do sends a request as userID; userID 0 sends no token.
func (a *api) do(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		req.Header.Set("Authorization", bearer(t, userID))
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestChatAPI_RequiresToken(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, http.MethodGet, "/api/chat/rooms", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestChatAPI_RoomsAndHistory(t *testing.T) {
	a := newAPI(t)
	a.membership.Set(project, 1, domain.RoleManager)
	a.membership.Set(project, 2, domain.RoleMember)

	rec := a.do(t, http.MethodPost, "/api/chat/rooms", 1, service.CreateRoomInput{ProjectID: project, Name: "general"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var room domain.ChatRoom
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))

	rec = a.do(t, http.MethodPost, "/api/chat/rooms", 2, service.CreateRoomInput{ProjectID: project, Name: "random"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/chat/rooms", 1, service.CreateRoomInput{ProjectID: project})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = a.do(t, http.MethodGet, "/api/chat/rooms?projectId="+strconv.FormatInt(project, 10), 2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []domain.ChatRoom
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "general", rooms[0].Name)

	_, err := a.chat.Send(context.Background(), domain.Identity{UserID: 2, DisplayName: "Bob"}, room.ID, "hello")
	require.NoError(t, err)

	path := "/api/chat/" + strconv.FormatInt(room.ID, 10) + "/history?limit=10"
	rec = a.do(t, http.MethodGet, path, 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []domain.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)

	rec = a.do(t, http.MethodGet, path, 3, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/chat/999/history", 1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/chat/projects", 2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"projectIds":[7]}`, rec.Body.String())
}

func TestChatAPI_DeleteMessage(t *testing.T) {
	a := newAPI(t)
	a.membership.Set(project, 1, domain.RoleAdmin)
	room, err := a.chat.CreateRoom(context.Background(), 1, service.CreateRoomInput{ProjectID: project, Name: "general"})
	require.NoError(t, err)
	msg, err := a.chat.Send(context.Background(), domain.Identity{UserID: 1}, room.ID, "oops")
	require.NoError(t, err)

	rec := a.do(t, http.MethodDelete, "/api/chat/"+strconv.FormatInt(msg.ID, 10), 1, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/chat/12345", 1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/chat/abc", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationAPI(t *testing.T) {
	a := newAPI(t)

	deliver := func(body any, key string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, "/internal/notifications", &buf)
		req.Header.Set(middleware.ServiceKeyHeader, key)
		rec := httptest.NewRecorder()
		a.mux.ServeHTTP(rec, req)
		return rec
	}

	rec := deliver(map[string]any{"userId": 42, "message": "hi"}, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = deliver(map[string]any{"message": "hi"}, testServiceKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = deliver(map[string]any{"userId": 42, "message": "Task assigned", "type": "TaskAssigned", "referenceId": "task:7"}, testServiceKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n domain.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))

	rec = deliver(map[string]any{"userIds": []int64{42, 43}, "message": "Document shared", "type": "DocumentShared"}, testServiceKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/notifications/unread-count", 42, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = a.do(t, http.MethodPut, "/api/notifications/"+strconv.FormatInt(n.ID, 10)+"/read", 43, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "not the owner")

	rec = a.do(t, http.MethodPut, "/api/notifications/"+strconv.FormatInt(n.ID, 10)+"/read", 42, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodPut, "/api/notifications/"+strconv.FormatInt(n.ID, 10)+"/unread", 42, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodPut, "/api/notifications/mark-all-read", 42, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/notifications?page=1&pageSize=1", 42, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page []domain.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page, 1)

	rec = a.do(t, http.MethodDelete, "/api/notifications/"+strconv.FormatInt(n.ID, 10), 42, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodDelete, "/api/notifications/"+strconv.FormatInt(n.ID, 10), 42, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInternalStats(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/internal/stats", nil)
	req.Header.Set(middleware.ServiceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":0,"registry":{"connections":0,"channels":0}}`, rec.Body.String())
}
