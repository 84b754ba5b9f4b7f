package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
	locations location.LocationRepository
}

func NewUserService(userRepository user.UserRepository, locationRepository location.LocationRepository) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepository,
		locations:      locationRepository,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *UserServiceImpl) checkLocation(ctx context.Context, locationID *string) error {
	if locationID == nil {
		return nil
	}
	if _, err := s.locations.GetByID(ctx, *locationID); err != nil {
		return err
	}
	return nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.checkLocation(ctx, req.LocationID); err != nil {
		return user.UserResponse{}, err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Email:        req.Email,
		Role:         req.Role,
		LocationID:   req.LocationID,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, user.ErrUsernameExists) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user.ToResponse(created), nil
}

// AssignLocation implements user.UserService. A nil location clears the
// assignment and the default window applies.
func (s *UserServiceImpl) AssignLocation(ctx context.Context, req user.AssignLocationRequest) error {
	if _, err := s.UserRepository.GetByID(ctx, req.UserID); err != nil {
		return err
	}
	if err := s.checkLocation(ctx, req.LocationID); err != nil {
		return err
	}
	return s.UserRepository.UpdateLocation(ctx, req.UserID, req.LocationID)
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.UserRepository.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, user.ToResponse(u))
	}
	return out, nil
}
