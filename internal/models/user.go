package models

import (
	"github.com/uptrace/bun"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleDesk  Role = "desk"
)

// User is a login account. Password holds a bcrypt hash.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,unique" json:"username"`
	Password string `bun:"password" json:"-"`
	Role     Role   `bun:"role" json:"role"`
}

// ResolveRole returns the user's explicit role. Rows created before the role
// column existed fall back to the legacy username check.
func (u *User) ResolveRole() Role {
	if u.Role != "" {
		return u.Role
	}
	if u.Username == "admin" {
		return RoleAdmin
	}
	return RoleDesk
}
