package realtime

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrUnknownConnection    = errors.New("unknown connection")
	ErrDuplicateConnection  = errors.New("connection already registered")
	ErrPersonalChannelTaken = errors.New("connection already holds a personal channel")
)

// Sink is the outbound side of a live connection.
type Sink interface {
	// Deliver queues one frame without blocking. A full or closed sink
	// returns an error wrapping domain.ErrDelivery.
	Deliver(frame []byte) error
	// Close tears the transport down. It must be safe to call more than once.
	Close()
}

type member struct {
	id   uuid.UUID
	sink Sink
}

type channel struct {
	mu      sync.RWMutex
	members map[uuid.UUID]Sink
	// dead is set under mu once the channel has been removed from the index.
	// A joiner that finds it set must look the channel up again.
	dead bool
}

type connEntry struct {
	mu       sync.Mutex
	sink     Sink
	channels map[ChannelID]struct{}
	personal ChannelID
	purged   bool
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Connections int `json:"connections"`
	Channels    int `json:"channels"`
}

// Registry maps channels to the connections joined to them and back.
//
// Lock order: connEntry.mu, then the index, then channel.mu. The index lock
// is held only to look up, create or drop a channel; joins, leaves and
// publishes on different channels never contend with each other.
type Registry struct {
	indexMu  sync.RWMutex
	channels map[ChannelID]*channel

	connMu sync.RWMutex
	conns  map[uuid.UUID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[ChannelID]*channel),
		conns:    make(map[uuid.UUID]*connEntry),
	}
}

// Register makes a connection known to the registry. It joins no channel.
func (r *Registry) Register(connID uuid.UUID, sink Sink) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if _, ok := r.conns[connID]; ok {
		return ErrDuplicateConnection
	}
	r.conns[connID] = &connEntry{
		sink:     sink,
		channels: make(map[ChannelID]struct{}),
	}
	return nil
}

// Join adds the connection to a channel. It reports whether the connection
// was newly added; joining a channel twice is a no-op.
func (r *Registry) Join(connID uuid.UUID, id ChannelID) (bool, error) {
	e := r.entry(connID)
	if e == nil {
		return false, ErrUnknownConnection
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.purged {
		return false, ErrUnknownConnection
	}
	if _, ok := e.channels[id]; ok {
		return false, nil
	}
	if id.IsPersonal() && e.personal != "" {
		return false, ErrPersonalChannelTaken
	}

	for {
		ch := r.acquire(id)
		ch.mu.Lock()
		if ch.dead {
			ch.mu.Unlock()
			continue
		}
		ch.members[connID] = e.sink
		ch.mu.Unlock()
		break
	}

	e.channels[id] = struct{}{}
	if id.IsPersonal() {
		e.personal = id
	}
	return true, nil
}

// Leave removes the connection from a channel. Leaving a channel that was
// never joined is a no-op, as is leaving on an unknown connection.
func (r *Registry) Leave(connID uuid.UUID, id ChannelID) bool {
	e := r.entry(connID)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.channels[id]; !ok {
		return false
	}

	r.indexMu.RLock()
	ch := r.channels[id]
	r.indexMu.RUnlock()

	if ch != nil {
		ch.mu.Lock()
		delete(ch.members, connID)
		empty := len(ch.members) == 0
		ch.mu.Unlock()
		if empty {
			r.reclaim(id)
		}
	}

	delete(e.channels, id)
	if e.personal == id {
		e.personal = ""
	}
	return true
}

// PurgeConnection removes the connection from every channel it joined and
// forgets it. No observer sees the connection in some of its channels but not
// others. It returns the channels that were left, sorted.
func (r *Registry) PurgeConnection(connID uuid.UUID) []ChannelID {
	r.connMu.Lock()
	e := r.conns[connID]
	delete(r.conns, connID)
	r.connMu.Unlock()

	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.purged {
		return nil
	}
	e.purged = true

	ids := lo.Keys(e.channels)
	slices.Sort(ids)

	type held struct {
		id ChannelID
		ch *channel
	}
	r.indexMu.RLock()
	locked := make([]held, 0, len(ids))
	for _, id := range ids {
		if ch := r.channels[id]; ch != nil {
			locked = append(locked, held{id: id, ch: ch})
		}
	}
	r.indexMu.RUnlock()

	// Sorted acquisition keeps concurrent purges from deadlocking.
	for _, h := range locked {
		h.ch.mu.Lock()
	}
	var empty []ChannelID
	for _, h := range locked {
		delete(h.ch.members, connID)
		if len(h.ch.members) == 0 {
			empty = append(empty, h.id)
		}
	}
	for i := len(locked) - 1; i >= 0; i-- {
		locked[i].ch.mu.Unlock()
	}

	e.channels = nil
	e.personal = ""

	for _, id := range empty {
		r.reclaim(id)
	}
	return ids
}

// MembersOf returns the connections currently joined to a channel.
func (r *Registry) MembersOf(id ChannelID) []uuid.UUID {
	return lo.Map(r.snapshot(id), func(m member, _ int) uuid.UUID { return m.id })
}

// ChannelsOf returns the channels a connection has joined, sorted.
func (r *Registry) ChannelsOf(connID uuid.UUID) []ChannelID {
	e := r.entry(connID)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	ids := lo.Keys(e.channels)
	e.mu.Unlock()

	slices.Sort(ids)
	return ids
}

func (r *Registry) Stats() Stats {
	r.connMu.RLock()
	conns := len(r.conns)
	r.connMu.RUnlock()

	r.indexMu.RLock()
	chans := len(r.channels)
	r.indexMu.RUnlock()

	return Stats{Connections: conns, Channels: chans}
}

// snapshot copies the members of a channel so delivery runs without locks.
func (r *Registry) snapshot(id ChannelID) []member {
	r.indexMu.RLock()
	ch := r.channels[id]
	r.indexMu.RUnlock()

	if ch == nil {
		return nil
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()

	out := make([]member, 0, len(ch.members))
	for connID, sink := range ch.members {
		out = append(out, member{id: connID, sink: sink})
	}
	return out
}

func (r *Registry) entry(connID uuid.UUID) *connEntry {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	return r.conns[connID]
}

// acquire returns the channel for id, creating it when missing.
func (r *Registry) acquire(id ChannelID) *channel {
	r.indexMu.RLock()
	ch := r.channels[id]
	r.indexMu.RUnlock()
	if ch != nil {
		return ch
	}

	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	if ch = r.channels[id]; ch == nil {
		ch = &channel{members: make(map[uuid.UUID]Sink)}
		r.channels[id] = ch
	}
	return ch
}

// reclaim drops the channel from the index if it is still empty.
func (r *Registry) reclaim(id ChannelID) {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	ch := r.channels[id]
	if ch == nil {
		return
	}

	ch.mu.Lock()
	if len(ch.members) == 0 {
		ch.dead = true
		delete(r.channels, id)
	}
	ch.mu.Unlock()
}
