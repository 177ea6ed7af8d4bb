package domain

import "time"

// UserRole separates requesters from help-desk staff.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is anyone who can log in: requesters and admins share one table.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         UserRole
	Department   *string
	Phone        *string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ValidRole reports whether the value is an accepted role.
func ValidRole(role UserRole) bool {
	return role == RoleUser || role == RoleAdmin
}
