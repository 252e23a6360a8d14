package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/syncspace/internal/domain"
)

type RoomRepo struct {
	pool *pgxpool.Pool
}

func NewRoomRepo(pool *pgxpool.Pool) *RoomRepo {
	return &RoomRepo{pool: pool}
}

func (r *RoomRepo) Create(ctx context.Context, room *domain.ChatRoom) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO chat_rooms (project_id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	return r.pool.QueryRow(ctx, query, room.ProjectID, room.Name, room.CreatedAt).Scan(&room.ID)
}

func (r *RoomRepo) GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	query := `SELECT id, project_id, name, created_at FROM chat_rooms WHERE id = $1`
	var room domain.ChatRoom
	err := r.pool.QueryRow(ctx, query, id).Scan(&room.ID, &room.ProjectID, &room.Name, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &room, err
}

func (r *RoomRepo) ListByProjects(ctx context.Context, projectIDs []int64) ([]domain.ChatRoom, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	query := `SELECT id, project_id, name, created_at
		FROM chat_rooms WHERE project_id = ANY($1) ORDER BY project_id, created_at, id`

	rows, err := r.pool.Query(ctx, query, projectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.ChatRoom
	for rows.Next() {
		var room domain.ChatRoom
		if err := rows.Scan(&room.ID, &room.ProjectID, &room.Name, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
