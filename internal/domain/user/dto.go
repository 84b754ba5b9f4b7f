package user

import (
	"strings"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/validator"
)

type CreateUserRequest struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	Email      *string `json:"email,omitempty"`
	Role       Role    `json:"role"`
	LocationID *string `json:"location_id,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Username = strings.TrimSpace(r.Username)
	if !validator.IsValidUsername(r.Username) {
		errs.Add("username", "username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	}
	if len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs.Add("email", "invalid email format")
	}
	if r.Role == "" {
		r.Role = RoleGeneral
	}
	if !IsValidRole(r.Role) {
		errs.Add("role", "role must be general or admin")
	}
	if r.LocationID != nil && validator.IsEmpty(*r.LocationID) {
		errs.Add("location_id", "location_id must not be blank")
	}

	return errs.Err()
}

type AssignLocationRequest struct {
	UserID     string  `json:"-"`
	LocationID *string `json:"location_id"`
}

type UserResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Email      *string `json:"email,omitempty"`
	Role       Role    `json:"role"`
	LocationID *string `json:"location_id,omitempty"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		LocationID: u.LocationID,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
