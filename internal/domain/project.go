package domain

// ProjectRole is a user's role inside a project. Membership and roles are
// owned by the project CRUD layer; this core only reads them.
type ProjectRole string

const (
	RoleAdmin   ProjectRole = "Admin"
	RoleManager ProjectRole = "Manager"
	RoleMember  ProjectRole = "Member"
	RoleViewer  ProjectRole = "Viewer"
)

// CanManageRooms reports whether the role may create chat rooms.
func (r ProjectRole) CanManageRooms() bool {
	return r == RoleAdmin || r == RoleManager
}
