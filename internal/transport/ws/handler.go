package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/vedran77/syncspace/internal/identity"
	"github.com/vedran77/syncspace/internal/realtime"
)

type Options struct {
	// OriginPatterns are passed to websocket.Accept. Empty means any origin.
	OriginPatterns []string
	// SendBufferSize is the number of frames queued per connection before
	// it is dropped.
	SendBufferSize int
}

// Handler upgrades authenticated requests to websocket sessions.
type Handler struct {
	manager   *realtime.Manager
	extractor *identity.Extractor
	opts      Options
	logger    *slog.Logger
}

func NewHandler(manager *realtime.Manager, extractor *identity.Extractor, opts Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		manager:   manager,
		extractor: extractor,
		opts:      opts,
		logger:    logger.With("component", "ws"),
	}
}

// ServeChat is the chat endpoint: rooms, messages and the personal channel.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

// ServeNotifications is the notification endpoint: personal channel only.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, rooms bool) {
	// Auth happens before the upgrade so a bad token never gets a socket.
	id, err := h.extractor.FromRequest(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     h.opts.OriginPatterns,
		InsecureSkipVerify: len(h.opts.OriginPatterns) == 0,
	})
	if err != nil {
		h.logger.Warn("accept failed", "user", id.UserID, "error", err)
		return
	}

	client := newClient(conn, h.opts.SendBufferSize, rooms, h.logger.With("user", id.UserID))
	session, err := h.manager.Accept(id, client)
	if errors.Is(err, realtime.ErrConnectionClosed) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	if err != nil {
		h.logger.Error("open session", "user", id.UserID, "error", err)
		conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}
	client.session = session
	client.logger = client.logger.With("conn", session.ID)

	go client.WritePump()
	client.ReadPump(context.Background())
}
