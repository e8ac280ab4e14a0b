package domain

import "time"

// Role is the closed set of roles a user may hold.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStoreOwner Role = "store_owner"
	RoleNormalUser Role = "normal_user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStoreOwner, RoleNormalUser:
		return true
	}
	return false
}

// User represents a platform account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Address      *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
