// Package access answers whether a user may join, post to, read or create
// chat rooms. Every answer is computed from current project membership; no
// result is cached between calls.
package access

import (
	"context"
	"fmt"

	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/repository"
)

//go:generate mockgen -destination=mocks/mock_membership.go -package=mocks github.com/vedran77/syncspace/internal/access Membership

// Membership is the read-only view of project membership provided by the
// project CRUD layer.
type Membership interface {
	IsMember(ctx context.Context, userID, projectID int64) (bool, error)
	// RoleOf returns the empty role when the user is not a member.
	RoleOf(ctx context.Context, userID, projectID int64) (domain.ProjectRole, error)
	ProjectsOf(ctx context.Context, userID int64) ([]int64, error)
}

type Validator struct {
	membership Membership
	rooms      repository.RoomRepository
}

func NewValidator(membership Membership, rooms repository.RoomRepository) *Validator {
	return &Validator{membership: membership, rooms: rooms}
}

// CanJoinRoom reports whether userID is a member of the project owning roomID.
// It returns domain.ErrRoomNotFound for unknown rooms.
func (v *Validator) CanJoinRoom(ctx context.Context, userID, roomID int64) (bool, error) {
	room, err := v.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("loading room %d: %w: %w", roomID, domain.ErrPersistence, err)
	}
	if room == nil {
		return false, domain.ErrRoomNotFound
	}

	ok, err := v.membership.IsMember(ctx, userID, room.ProjectID)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w: %w", domain.ErrPersistence, err)
	}
	return ok, nil
}

// CanPost is the same check as CanJoinRoom. Posting needs membership, not a role.
func (v *Validator) CanPost(ctx context.Context, userID, roomID int64) (bool, error) {
	return v.CanJoinRoom(ctx, userID, roomID)
}

// CanCreateRoom reports whether userID is an Admin or Manager of projectID.
func (v *Validator) CanCreateRoom(ctx context.Context, userID, projectID int64) (bool, error) {
	role, err := v.membership.RoleOf(ctx, userID, projectID)
	if err != nil {
		return false, fmt.Errorf("loading role: %w: %w", domain.ErrPersistence, err)
	}
	return role.CanManageRooms(), nil
}

// Projects lists the projects userID currently belongs to.
func (v *Validator) Projects(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := v.membership.ProjectsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w: %w", domain.ErrPersistence, err)
	}
	return ids, nil
}
