package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/vedran77/syncspace/internal/domain"
)

type memberKey struct {
	projectID int64
	userID    int64
}

// Membership is a mutable stand-in for the project CRUD layer. Set and
// Remove take effect on the very next access check.
type Membership struct {
	mu    sync.RWMutex
	roles map[memberKey]domain.ProjectRole
}

func NewMembership() *Membership {
	return &Membership{roles: make(map[memberKey]domain.ProjectRole)}
}

func (m *Membership) Set(projectID, userID int64, role domain.ProjectRole) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[memberKey{projectID, userID}] = role
}

func (m *Membership) Remove(projectID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles, memberKey{projectID, userID})
}

func (m *Membership) IsMember(ctx context.Context, userID, projectID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.roles[memberKey{projectID, userID}]
	return ok, nil
}

func (m *Membership) RoleOf(ctx context.Context, userID, projectID int64) (domain.ProjectRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roles[memberKey{projectID, userID}], nil
}

func (m *Membership) ProjectsOf(ctx context.Context, userID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []int64
	for k := range m.roles {
		if k.userID == userID {
			ids = append(ids, k.projectID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
