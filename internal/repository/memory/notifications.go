package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/repository"
)

type NotificationRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*domain.Notification
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{items: make(map[int64]*domain.Notification)}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insert(n, time.Now().UTC())
	return nil
}

func (r *NotificationRepo) CreateMany(ctx context.Context, ns []*domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, n := range ns {
		r.insert(n, now)
	}
	return nil
}

func (r *NotificationRepo) insert(n *domain.Notification, now time.Time) {
	r.nextID++
	n.ID = r.nextID
	n.IsRead = false
	n.CreatedAt = now
	stored := *n
	r.items[n.ID] = &stored
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]domain.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = repository.DefaultPageSize
	}

	r.mu.RLock()
	var all []domain.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			all = append(all, *n)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b domain.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareInt64(b.ID, a.ID)
	})

	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+pageSize, len(all))
	return all[start:end], nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	return r.setRead(id, userID, true), nil
}

func (r *NotificationRepo) MarkUnread(ctx context.Context, id, userID int64) (bool, error) {
	return r.setRead(id, userID, false), nil
}

func (r *NotificationRepo) setRead(id, userID int64, read bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return false
	}
	n.IsRead = read
	return true
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}
