package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/syncspace/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Append(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC().Truncate(time.Microsecond)
	}
	query := `
		INSERT INTO chat_messages (room_id, sender_id, sender_name, content, created_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		msg.RoomID, msg.SenderID, msg.SenderName, msg.Content, msg.Timestamp,
	).Scan(&msg.ID)
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, sender_name, content, created_at, is_deleted
		FROM chat_messages WHERE id = $1`
	var msg domain.ChatMessage
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderName, &msg.Content, &msg.Timestamp, &msg.IsDeleted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

func (r *MessageRepo) History(ctx context.Context, roomID int64, limit int) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, room_id, sender_id, sender_name, content, created_at, is_deleted
		FROM chat_messages
		WHERE room_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderName, &msg.Content, &msg.Timestamp, &msg.IsDeleted,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	// Query is DESC; callers want chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, rows.Err()
}

func (r *MessageRepo) SoftDelete(ctx context.Context, id, requesterID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE chat_messages SET is_deleted = TRUE WHERE id = $1 AND sender_id = $2 AND NOT is_deleted`,
		id, requesterID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
