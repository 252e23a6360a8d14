package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/syncspace/internal/domain"
)

// MembershipRepo reads the project_members table owned by the project CRUD
// layer. It never writes to it.
type MembershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

func (r *MembershipRepo) IsMember(ctx context.Context, userID, projectID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *MembershipRepo) RoleOf(ctx context.Context, userID, projectID int64) (domain.ProjectRole, error) {
	query := `SELECT role FROM project_members WHERE project_id = $1 AND user_id = $2`
	var role string
	err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return domain.ProjectRole(role), err
}

func (r *MembershipRepo) ProjectsOf(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT project_id FROM project_members WHERE user_id = $1 ORDER BY project_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
