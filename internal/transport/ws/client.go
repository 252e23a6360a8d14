package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/realtime"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	opTimeout      = 10 * time.Second
	maxMessageSize = 16 << 10
	sendBufSize    = 256
)

// Client is the websocket side of a realtime.Connection. It implements
// realtime.Sink.
type Client struct {
	conn    *websocket.Conn
	session *realtime.Connection
	rooms   bool
	logger  *slog.Logger

	send chan []byte
	done chan struct{}

	closeOnce   sync.Once
	closeCode   websocket.StatusCode
	closeReason string
}

func newClient(conn *websocket.Conn, bufSize int, rooms bool, logger *slog.Logger) *Client {
	if bufSize <= 0 {
		bufSize = sendBufSize
	}
	return &Client{
		conn:   conn,
		rooms:  rooms,
		logger: logger,
		send:   make(chan []byte, bufSize),
		done:   make(chan struct{}),
	}
}

// Deliver queues a frame for the write pump. A client that cannot keep up
// is disconnected; it re-reads history after reconnecting.
func (c *Client) Deliver(frame []byte) error {
	select {
	case <-c.done:
		return fmt.Errorf("%w: connection closed", domain.ErrDelivery)
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.shutdown(websocket.StatusPolicyViolation, "send buffer full")
		return fmt.Errorf("%w: send buffer full", domain.ErrDelivery)
	}
}

func (c *Client) Close() {
	c.shutdown(websocket.StatusNormalClosure, "")
}

func (c *Client) shutdown(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode, c.closeReason = code, reason
		close(c.done)
	})
}

// ReadPump reads client events until the socket fails, then closes the
// session, which purges it from every channel.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.session.Close()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		var event realtime.Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.logger.Debug("client disconnected", "status", websocket.CloseStatus(err))
			} else {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}

		c.handleEvent(ctx, &event)
	}
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.logger.Debug("write failed", "error", err)
				c.shutdown(websocket.StatusInternalError, "write failed")
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.logger.Debug("ping failed", "error", err)
				c.shutdown(websocket.StatusGoingAway, "ping timeout")
			}

		case <-c.done:
			c.conn.Close(c.closeCode, c.closeReason)
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(ctx context.Context, event *realtime.Event) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	switch event.Type {
	case EventTypeJoinGroup, EventTypeLeaveGroup:
		if !c.rooms {
			c.sendError(CodeUnknownEvent, "rooms are not available on this endpoint")
			return
		}
		var p RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.RoomID <= 0 {
			c.sendError(CodeInvalidPayload, "invalid "+event.Type+" payload")
			return
		}
		var err error
		if event.Type == EventTypeJoinGroup {
			err = c.session.JoinRoom(ctx, p.RoomID)
		} else {
			err = c.session.LeaveRoom(ctx, p.RoomID)
		}
		c.report(event.Type, err)

	case EventTypeSendMessage:
		if !c.rooms {
			c.sendError(CodeUnknownEvent, "rooms are not available on this endpoint")
			return
		}
		var p SendMessagePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.RoomID <= 0 {
			c.sendError(CodeInvalidPayload, "invalid SendMessage payload")
			return
		}
		_, err := c.session.Send(ctx, p.RoomID, p.Content)
		c.report(event.Type, err)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError(CodeUnknownEvent, "unknown event type: "+event.Type)
	}
}

// report tells the caller, and only the caller, that an operation failed.
func (c *Client) report(op string, err error) {
	if err == nil || errors.Is(err, realtime.ErrConnectionClosed) {
		return
	}
	p := errorPayload(err)
	if p.Code == CodeInternal || p.Code == CodeUnavailable {
		c.logger.Error("operation failed", "op", op, "error", err)
	}
	c.sendError(p.Code, p.Message)
}

func (c *Client) sendPong() {
	data, err := json.Marshal(realtime.Event{Type: realtime.EventPong, Timestamp: time.Now().Unix()})
	if err != nil {
		return
	}
	_ = c.Deliver(data)
}

func (c *Client) sendError(code, message string) {
	data, err := realtime.Encode(realtime.EventError, "", realtime.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	_ = c.Deliver(data)
}
