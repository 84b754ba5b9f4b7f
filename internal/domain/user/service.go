package user

import "context"

type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	AssignLocation(ctx context.Context, req AssignLocationRequest) error
	List(ctx context.Context) ([]UserResponse, error)
}
