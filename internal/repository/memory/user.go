package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
)

type userRepositoryImpl struct {
	s *Store
}

func NewUserRepository(s *Store) user.UserRepository {
	return &userRepositoryImpl{s: s}
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.st.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (user.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Username, newUser.Username) {
			return user.User{}, user.ErrUsernameExists
		}
	}
	if newUser.ID == "" {
		newUser.ID = newID()
	}
	now := r.s.now()
	newUser.CreatedAt, newUser.UpdatedAt = now, now
	r.s.st.users[newUser.ID] = newUser
	return newUser, nil
}

func (r *userRepositoryImpl) UpdateLocation(ctx context.Context, userID string, locationID *string) error {
	defer r.s.lock(ctx)()
	u, ok := r.s.st.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	if locationID != nil {
		id := *locationID
		u.LocationID = &id
	} else {
		u.LocationID = nil
	}
	u.UpdatedAt = r.s.now()
	r.s.st.users[userID] = u
	return nil
}

func (r *userRepositoryImpl) ListActive(ctx context.Context) ([]user.User, error) {
	defer r.s.lock(ctx)()
	var out []user.User
	for _, u := range r.s.st.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepositoryImpl) Count(ctx context.Context) (int64, error) {
	defer r.s.lock(ctx)()
	return int64(len(r.s.st.users)), nil
}
