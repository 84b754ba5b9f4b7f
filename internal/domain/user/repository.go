package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	UpdateLocation(ctx context.Context, userID string, locationID *string) error
	// ListActive returns active users ordered by username.
	ListActive(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int64, error)
}
