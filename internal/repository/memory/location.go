package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
)

type locationRepositoryImpl struct {
	s *Store
}

func NewLocationRepository(s *Store) location.LocationRepository {
	return &locationRepositoryImpl{s: s}
}

func (r *locationRepositoryImpl) GetByID(ctx context.Context, id string) (location.Location, error) {
	defer r.s.lock(ctx)()
	l, ok := r.s.st.locations[id]
	if !ok {
		return location.Location{}, location.ErrLocationNotFound
	}
	return l, nil
}

func (r *locationRepositoryImpl) List(ctx context.Context) ([]location.Location, error) {
	defer r.s.lock(ctx)()
	out := make([]location.Location, 0, len(r.s.st.locations))
	for _, l := range r.s.st.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *locationRepositoryImpl) Create(ctx context.Context, loc location.Location) (location.Location, error) {
	defer r.s.lock(ctx)()
	if r.nameTaken(loc.Name, "") {
		return location.Location{}, location.ErrLocationNameExists
	}
	if loc.ID == "" {
		loc.ID = newID()
	}
	now := r.s.now()
	loc.CreatedAt, loc.UpdatedAt = now, now
	r.s.st.locations[loc.ID] = loc
	return loc, nil
}

func (r *locationRepositoryImpl) Update(ctx context.Context, loc location.Location) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.st.locations[loc.ID]
	if !ok {
		return location.ErrLocationNotFound
	}
	if r.nameTaken(loc.Name, loc.ID) {
		return location.ErrLocationNameExists
	}
	loc.CreatedAt = current.CreatedAt
	loc.UpdatedAt = r.s.now()
	r.s.st.locations[loc.ID] = loc
	return nil
}

func (r *locationRepositoryImpl) nameTaken(name, exceptID string) bool {
	for id, l := range r.s.st.locations {
		if id != exceptID && strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}
