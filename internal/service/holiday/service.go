package holiday

import (
	"context"
	"strings"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
)

type HolidayServiceImpl struct {
	holiday.HolidayRepository
}

func NewHolidayService(holidayRepository holiday.HolidayRepository) holiday.HolidayService {
	return &HolidayServiceImpl{HolidayRepository: holidayRepository}
}

// Create implements holiday.HolidayService.
func (s *HolidayServiceImpl) Create(ctx context.Context, actorID string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	h := holiday.CompanyHoliday{
		Date: req.Day,
		Name: strings.TrimSpace(req.Name),
	}
	if actorID != "" {
		h.CreatedBy = &actorID
	}

	created, err := s.HolidayRepository.Create(ctx, h)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return holiday.ToResponse(created), nil
}

// ListByYear implements holiday.HolidayService.
func (s *HolidayServiceImpl) ListByYear(ctx context.Context, req holiday.ListHolidayRequest) ([]holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from := time.Date(req.YearValue, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(req.YearValue, time.December, 31, 0, 0, 0, 0, time.UTC)
	holidays, err := s.HolidayRepository.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, holiday.ToResponse(h))
	}
	return out, nil
}
