package domain

import "time"

// Role is a chat-scoped participant role. The set is open; unknown roles are
// treated as ordinary (non-elevated) members.
type Role string

const (
	RoleClient     Role = "client"
	RoleManager    Role = "manager"
	RoleMaster     Role = "master"
	RoleConsultant Role = "consultant"
	RoleAdmin      Role = "admin"
)

var elevatedRoles = map[Role]bool{
	RoleManager:    true,
	RoleMaster:     true,
	RoleConsultant: true,
	RoleAdmin:      true,
}

// IsElevated reports whether the role grants admin rights inside its chat
func (r Role) IsElevated() bool {
	return elevatedRoles[r]
}

// Participant is a (user, role) pair scoped to one chat (value object)
type Participant struct {
	UserID   string    `json:"userId"`
	Role     Role      `json:"role"`
	Founding bool      `json:"founding"`
	JoinedAt time.Time `json:"joinedAt"`
}

// IsAdmin reports whether the participant holds an elevated role
func (p *Participant) IsAdmin() bool {
	return p.Role.IsElevated()
}
