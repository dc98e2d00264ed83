package models

import "time"

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// CanViewHidden reports whether the role is allowed to see hidden-factor
// data on combatants and battles.
func (r UserRole) CanViewHidden() bool {
	return r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID           int       `json:"id"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
