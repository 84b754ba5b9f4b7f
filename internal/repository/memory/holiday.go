package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
)

type holidayRepositoryImpl struct {
	s *Store
}

func NewHolidayRepository(s *Store) holiday.HolidayRepository {
	return &holidayRepositoryImpl{s: s}
}

func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.CompanyHoliday) (holiday.CompanyHoliday, error) {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.st.companyHolidays {
		if sameDate(existing.Date, h.Date) {
			return holiday.CompanyHoliday{}, holiday.ErrHolidayDateExists
		}
	}
	if h.ID == "" {
		h.ID = newID()
	}
	h.CreatedAt = r.s.now()
	r.s.st.companyHolidays[h.ID] = h
	return h, nil
}

func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.companyHolidays[id]; !ok {
		return holiday.ErrHolidayNotFound
	}
	delete(r.s.st.companyHolidays, id)
	return nil
}

func (r *holidayRepositoryImpl) ListBetween(ctx context.Context, from, to time.Time) ([]holiday.CompanyHoliday, error) {
	defer r.s.lock(ctx)()
	var out []holiday.CompanyHoliday
	for _, h := range r.s.st.companyHolidays {
		if within(h.Date, from, to) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
