package user

import "time"

type Role string

const (
	RoleGeneral Role = "general" // Regular employee
	RoleAdmin   Role = "admin"   // Can decide requests and run aggregation
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        *string
	Role         Role
	LocationID   *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user holds administrator capability
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func IsValidRole(r Role) bool {
	return r == RoleGeneral || r == RoleAdmin
}
