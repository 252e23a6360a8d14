package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/repository"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

const insertNotification = `
	INSERT INTO notifications (user_id, message, type, reference_id, is_read, created_at)
	VALUES ($1, $2, $3, $4, FALSE, $5)
	RETURNING id`

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	n.IsRead = false
	n.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	return r.pool.QueryRow(ctx, insertNotification,
		n.UserID, n.Message, n.Type, n.ReferenceID, n.CreatedAt,
	).Scan(&n.ID)
}

func (r *NotificationRepo) CreateMany(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, n := range ns {
			n.IsRead = false
			n.CreatedAt = now
			if err := tx.QueryRow(ctx, insertNotification,
				n.UserID, n.Message, n.Type, n.ReferenceID, n.CreatedAt,
			).Scan(&n.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]domain.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = repository.DefaultPageSize
	}
	query := `
		SELECT id, user_id, message, type, reference_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.ReferenceID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	return r.setRead(ctx, id, userID, true)
}

func (r *NotificationRepo) MarkUnread(ctx context.Context, id, userID int64) (bool, error) {
	return r.setRead(ctx, id, userID, false)
}

func (r *NotificationRepo) setRead(ctx context.Context, id, userID int64, read bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = $1 WHERE id = $2 AND user_id = $3`, read, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID,
	).Scan(&count)
	return count, err
}

func (r *NotificationRepo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
