package location

import (
	"context"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
)

type LocationServiceImpl struct {
	location.LocationRepository
}

func NewLocationService(locationRepository location.LocationRepository) location.LocationService {
	return &LocationServiceImpl{LocationRepository: locationRepository}
}

// window parses a validated request. Validate has already checked both
// readings, so parse errors cannot occur here.
func window(req location.UpsertLocationRequest) (clock.TimeOfDay, clock.TimeOfDay) {
	return clock.MustTimeOfDay(req.StartTime), clock.MustTimeOfDay(req.EndTime)
}

// List implements location.LocationService.
func (s *LocationServiceImpl) List(ctx context.Context) ([]location.LocationResponse, error) {
	locations, err := s.LocationRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]location.LocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, location.ToResponse(l))
	}
	return out, nil
}

// Create implements location.LocationService.
func (s *LocationServiceImpl) Create(ctx context.Context, req location.UpsertLocationRequest) (location.LocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.LocationResponse{}, err
	}
	start, end := window(req)

	created, err := s.LocationRepository.Create(ctx, location.Location{
		Name:      req.Name,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return location.LocationResponse{}, err
	}
	return location.ToResponse(created), nil
}

// Update implements location.LocationService. Recorded attendance keeps the
// totals it was computed with.
func (s *LocationServiceImpl) Update(ctx context.Context, req location.UpsertLocationRequest) (location.LocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.LocationResponse{}, err
	}

	current, err := s.LocationRepository.GetByID(ctx, req.ID)
	if err != nil {
		return location.LocationResponse{}, err
	}
	current.Name = req.Name
	current.StartTime, current.EndTime = window(req)

	if err := s.LocationRepository.Update(ctx, current); err != nil {
		return location.LocationResponse{}, err
	}
	return location.ToResponse(current), nil
}
