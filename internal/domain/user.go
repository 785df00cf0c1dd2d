package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents an authenticated account within the platform. Provisioning
// assigns the Freemium plan; only the plan reference changes afterwards.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      UserRole
	PlanID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
