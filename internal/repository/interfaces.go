package repository

import (
	"context"

	"github.com/vedran77/syncspace/internal/domain"
)

// DefaultPageSize is used by ListByUser when page size is not positive.
const DefaultPageSize = 20

type RoomRepository interface {
	Create(ctx context.Context, room *domain.ChatRoom) error
	// GetByID returns nil, nil when the room does not exist.
	GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error)
	ListByProjects(ctx context.Context, projectIDs []int64) ([]domain.ChatRoom, error)
}

type MessageRepository interface {
	// Append persists msg, filling ID and Timestamp when they are zero.
	Append(ctx context.Context, msg *domain.ChatMessage) error
	// GetByID returns nil, nil when the message does not exist. Soft-deleted
	// messages are still returned.
	GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error)
	// History returns the newest limit non-deleted messages of a room, oldest first.
	History(ctx context.Context, roomID int64, limit int) ([]domain.ChatMessage, error)
	// SoftDelete flags the message as deleted only when requesterID is its
	// sender. It reports whether a row was changed.
	SoftDelete(ctx context.Context, id, requesterID int64) (bool, error)
}

type NotificationRepository interface {
	// Create persists n, filling ID and CreatedAt. IsRead is forced to false.
	Create(ctx context.Context, n *domain.Notification) error
	// CreateMany persists all notifications atomically.
	CreateMany(ctx context.Context, ns []*domain.Notification) error
	// ListByUser returns one page (1-based) of a user's notifications, newest first.
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
	MarkUnread(ctx context.Context, id, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}
