package handlers

import "net/http"

type Middleware func(http.Handler) http.Handler

// Routes wires the REST API onto a mux.
type Routes struct {
	Auth          Middleware
	ServiceKey    Middleware
	Chat          *ChatHandler
	Notifications *NotificationHandler
	Internal      *InternalHandler
}

func (rt Routes) Register(mux *http.ServeMux) {
	auth := func(fn http.HandlerFunc) http.Handler { return rt.Auth(fn) }
	internal := func(fn http.HandlerFunc) http.Handler { return rt.ServiceKey(fn) }

	// Protected - Chat
	mux.Handle("GET /api/chat/rooms", auth(rt.Chat.Rooms))
	mux.Handle("POST /api/chat/rooms", auth(rt.Chat.CreateRoom))
	mux.Handle("GET /api/chat/projects", auth(rt.Chat.Projects))
	mux.Handle("GET /api/chat/{roomId}/history", auth(rt.Chat.History))
	mux.Handle("DELETE /api/chat/{messageId}", auth(rt.Chat.DeleteMessage))

	// Protected - Notifications
	mux.Handle("GET /api/notifications", auth(rt.Notifications.List))
	mux.Handle("GET /api/notifications/unread-count", auth(rt.Notifications.UnreadCount))
	mux.Handle("PUT /api/notifications/mark-all-read", auth(rt.Notifications.MarkAllRead))
	mux.Handle("PUT /api/notifications/{id}/read", auth(rt.Notifications.MarkRead))
	mux.Handle("PUT /api/notifications/{id}/unread", auth(rt.Notifications.MarkUnread))
	mux.Handle("DELETE /api/notifications/{id}", auth(rt.Notifications.Delete))

	// Internal - other subsystems
	mux.Handle("POST /internal/notifications", internal(rt.Internal.Deliver))
	mux.Handle("GET /internal/stats", internal(rt.Internal.Stats))
}
