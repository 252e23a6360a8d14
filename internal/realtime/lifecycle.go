package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vedran77/syncspace/internal/domain"
)

var ErrConnectionClosed = errors.New("connection closed")

type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// RoomAuthorizer decides room access. It is asked on every join.
type RoomAuthorizer interface {
	CanJoinRoom(ctx context.Context, userID, roomID int64) (bool, error)
}

// ChatSender validates, persists and broadcasts a chat message.
type ChatSender interface {
	Send(ctx context.Context, sender domain.Identity, roomID int64, content string) (*domain.ChatMessage, error)
}

// Manager owns the set of live connections.
type Manager struct {
	registry   *Registry
	dispatcher *Dispatcher
	access     RoomAuthorizer
	chat       ChatSender
	logger     *slog.Logger

	mu       sync.Mutex
	conns    map[uuid.UUID]*Connection
	shutdown bool
}

func NewManager(registry *Registry, dispatcher *Dispatcher, access RoomAuthorizer, chat ChatSender, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry:   registry,
		dispatcher: dispatcher,
		access:     access,
		chat:       chat,
		logger:     logger.With("component", "lifecycle"),
		conns:      make(map[uuid.UUID]*Connection),
	}
}

// Accept opens a connection for an authenticated identity and joins it to
// the user's personal channel.
func (m *Manager) Accept(id domain.Identity, sink Sink) (*Connection, error) {
	if id.UserID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	if m.closing() {
		return nil, ErrConnectionClosed
	}

	c := &Connection{
		ID:       uuid.New(),
		Identity: id,
		OpenedAt: time.Now().UTC(),
		manager:  m,
		sink:     sink,
	}
	c.state.Store(int32(StateConnecting))

	if err := m.registry.Register(c.ID, sink); err != nil {
		return nil, fmt.Errorf("register connection: %w", err)
	}
	if _, err := m.registry.Join(c.ID, PersonalChannel(id.UserID)); err != nil {
		m.registry.PurgeConnection(c.ID)
		return nil, fmt.Errorf("join personal channel: %w", err)
	}

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		m.registry.PurgeConnection(c.ID)
		return nil, ErrConnectionClosed
	}
	m.conns[c.ID] = c
	m.mu.Unlock()

	c.state.Store(int32(StateOpen))
	m.logger.Info("connection opened", "conn", c.ID, "user", id.UserID)
	return c, nil
}

// Count returns the number of open connections.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// Stats reports registry occupancy.
func (m *Manager) Stats() Stats {
	return m.registry.Stats()
}

// Shutdown closes every open connection and refuses new ones from then on.
// It stops early if ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.shutdown = true
	conns := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	m.logger.Info("closing connections", "count", len(conns))
	for _, c := range conns {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Close()
	}
	return nil
}

func (m *Manager) closing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}

func (m *Manager) forget(id uuid.UUID) {
	m.mu.Lock()
	delete(m.conns, id)
	m.mu.Unlock()
}

// Connection is one live client session. Its methods are safe for
// concurrent use, but a transport normally drives it from a single reader.
type Connection struct {
	ID       uuid.UUID
	Identity domain.Identity
	OpenedAt time.Time

	manager   *Manager
	sink      Sink
	state     atomic.Int32
	closeOnce sync.Once
}

func (c *Connection) State() State {
	return State(c.state.Load())
}

// Rooms returns the ids of the rooms the connection has joined.
func (c *Connection) Rooms() []int64 {
	var out []int64
	for _, ch := range c.manager.registry.ChannelsOf(c.ID) {
		if id, ok := ch.RoomID(); ok {
			out = append(out, id)
		}
	}
	return out
}

// JoinRoom subscribes the connection to a room after an access check and
// announces the join to the room, the joiner included.
func (c *Connection) JoinRoom(ctx context.Context, roomID int64) error {
	if c.State() != StateOpen {
		return ErrConnectionClosed
	}

	ok, err := c.manager.access.CanJoinRoom(ctx, c.Identity.UserID, roomID)
	if err != nil {
		return fmt.Errorf("check room access: %w", err)
	}
	if !ok {
		c.manager.logger.Warn("join refused", "conn", c.ID, "user", c.Identity.UserID, "room", roomID)
		return fmt.Errorf("join room %d: %w", roomID, domain.ErrUnauthorized)
	}

	added, err := c.manager.registry.Join(c.ID, RoomChannel(roomID))
	if errors.Is(err, ErrUnknownConnection) {
		return ErrConnectionClosed
	}
	if err != nil {
		return err
	}
	if added {
		c.manager.dispatcher.PublishToRoom(roomID, EventUserJoined, c.presence(roomID))
	}
	return nil
}

// LeaveRoom unsubscribes the connection. It never fails on an open
// connection; UserLeft is announced only when the connection was in the room.
func (c *Connection) LeaveRoom(_ context.Context, roomID int64) error {
	if c.State() != StateOpen {
		return ErrConnectionClosed
	}
	if c.manager.registry.Leave(c.ID, RoomChannel(roomID)) {
		c.manager.dispatcher.PublishToRoom(roomID, EventUserLeft, c.presence(roomID))
	}
	return nil
}

// Send posts a message to a room as the connection's user.
func (c *Connection) Send(ctx context.Context, roomID int64, content string) (*domain.ChatMessage, error) {
	if c.State() != StateOpen {
		return nil, ErrConnectionClosed
	}
	msg, err := c.manager.chat.Send(ctx, c.Identity, roomID, content)
	if errors.Is(err, domain.ErrUnauthorized) {
		c.manager.logger.Warn("send refused", "conn", c.ID, "user", c.Identity.UserID, "room", roomID)
	}
	return msg, err
}

// Close purges the connection from every channel, closes its sink and then
// tells the rooms it was in that the user left. Only the first call has any
// effect.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosing))

		left := c.manager.registry.PurgeConnection(c.ID)
		c.manager.forget(c.ID)
		c.sink.Close()
		c.state.Store(int32(StateClosed))

		for _, ch := range left {
			if roomID, ok := ch.RoomID(); ok {
				c.manager.dispatcher.Publish(ch, EventUserLeft, c.presence(roomID))
			}
		}
		c.manager.logger.Info("connection closed",
			"conn", c.ID, "user", c.Identity.UserID, "rooms", len(left),
			"duration", time.Since(c.OpenedAt).Round(time.Millisecond))
	})
}

func (c *Connection) presence(roomID int64) PresencePayload {
	return PresencePayload{
		RoomID:      roomID,
		UserID:      c.Identity.UserID,
		DisplayName: c.Identity.DisplayName,
	}
}
