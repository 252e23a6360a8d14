package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vedran77/syncspace/internal/domain"
)

// MessageRepo keeps messages per room sorted by (timestamp, id). Callers may
// preset Timestamp, so Append inserts in place rather than at the tail.
type MessageRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.ChatMessage
	rooms  map[int64][]*domain.ChatMessage
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{
		byID:  make(map[int64]*domain.ChatMessage),
		rooms: make(map[int64][]*domain.ChatMessage),
	}
}

func (r *MessageRepo) Append(ctx context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	msg.ID = r.nextID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.IsDeleted = false

	stored := *msg
	r.byID[stored.ID] = &stored
	room := r.rooms[stored.RoomID]
	at := slices.IndexFunc(room, func(m *domain.ChatMessage) bool { return stored.Before(m) })
	if at < 0 {
		at = len(room)
	}
	r.rooms[stored.RoomID] = slices.Insert(room, at, &stored)
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	return &cp, nil
}

func (r *MessageRepo) History(ctx context.Context, roomID int64, limit int) ([]domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.rooms[roomID]
	var out []domain.ChatMessage
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].IsDeleted {
			continue
		}
		out = append(out, *all[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *MessageRepo) SoftDelete(ctx context.Context, id, requesterID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.byID[id]
	if !ok || msg.SenderID != requesterID || msg.IsDeleted {
		return false, nil
	}
	msg.IsDeleted = true
	return true, nil
}
