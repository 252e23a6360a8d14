package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vedran77/syncspace/internal/domain"
)

type RoomRepo struct {
	mu     sync.RWMutex
	nextID int64
	rooms  map[int64]domain.ChatRoom
}

func NewRoomRepo() *RoomRepo {
	return &RoomRepo{rooms: make(map[int64]domain.ChatRoom)}
}

func (r *RoomRepo) Create(ctx context.Context, room *domain.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	room.ID = r.nextID
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	r.rooms[room.ID] = *room
	return nil
}

func (r *RoomRepo) GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (r *RoomRepo) ListByProjects(ctx context.Context, projectIDs []int64) ([]domain.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.ChatRoom
	for _, room := range r.rooms {
		if slices.Contains(projectIDs, room.ProjectID) {
			out = append(out, room)
		}
	}
	slices.SortFunc(out, func(a, b domain.ChatRoom) int {
		if a.ProjectID != b.ProjectID {
			return compareInt64(a.ProjectID, b.ProjectID)
		}
		return compareInt64(a.ID, b.ID)
	})
	return out, nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
