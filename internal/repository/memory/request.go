package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
)

// requestTable implements request.Store for one kind. span returns the
// dates a filter's From/To is matched against.
type requestTable[T any] struct {
	s      *Store
	table  func(*state) map[string]T
	header func(*T) *request.Header
	span   func(T) (time.Time, time.Time)
}

func (t *requestTable[T]) Create(ctx context.Context, r T) (T, error) {
	defer t.s.lock(ctx)()
	h := t.header(&r)
	if h.ID == "" {
		h.ID = newID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = t.s.now()
	}
	if h.Status == "" {
		h.Status = request.StatusPending
	}
	t.table(t.s.st)[h.ID] = r
	return r, nil
}

func (t *requestTable[T]) GetByID(ctx context.Context, id string) (T, error) {
	defer t.s.lock(ctx)()
	r, ok := t.table(t.s.st)[id]
	if !ok {
		var zero T
		return zero, request.ErrRequestNotFound
	}
	return r, nil
}

func (t *requestTable[T]) Decide(ctx context.Context, id string, d request.Decision) error {
	defer t.s.lock(ctx)()
	tbl := t.table(t.s.st)
	r, ok := tbl[id]
	if !ok {
		return request.ErrRequestNotFound
	}
	h := t.header(&r)
	if !h.IsPending() {
		return request.ErrAlreadyDecided
	}
	h.Apply(d)
	tbl[id] = r
	return nil
}

func (t *requestTable[T]) List(ctx context.Context, filter request.Filter) ([]T, error) {
	defer t.s.lock(ctx)()
	var out []T
	for _, r := range t.table(t.s.st) {
		if t.matches(r, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := t.header(&out[i]), t.header(&out[j])
		if !hi.CreatedAt.Equal(hj.CreatedAt) {
			return hi.CreatedAt.After(hj.CreatedAt)
		}
		return hi.ID > hj.ID
	})
	return out, nil
}

func (t *requestTable[T]) matches(r T, f request.Filter) bool {
	h := t.header(&r)
	if f.UserID != nil && h.UserID != *f.UserID {
		return false
	}
	if f.Status != nil && h.Status != *f.Status {
		return false
	}
	start, end := t.span(r)
	if f.From != nil && end.Format(dateKey) < f.From.Format(dateKey) {
		return false
	}
	if f.To != nil && start.Format(dateKey) > f.To.Format(dateKey) {
		return false
	}
	return true
}

type correctionRepositoryImpl struct {
	*requestTable[request.CorrectionRequest]
}

func NewCorrectionRepository(s *Store) request.CorrectionRepository {
	return &correctionRepositoryImpl{&requestTable[request.CorrectionRequest]{
		s:      s,
		table:  func(st *state) map[string]request.CorrectionRequest { return st.corrections },
		header: func(r *request.CorrectionRequest) *request.Header { return &r.Header },
		span:   func(r request.CorrectionRequest) (time.Time, time.Time) { return r.TargetDate, r.TargetDate },
	}}
}

type overtimeRepositoryImpl struct {
	*requestTable[request.OvertimeRequest]
}

func NewOvertimeRepository(s *Store) request.OvertimeRepository {
	return &overtimeRepositoryImpl{&requestTable[request.OvertimeRequest]{
		s:      s,
		table:  func(st *state) map[string]request.OvertimeRequest { return st.overtimes },
		header: func(r *request.OvertimeRequest) *request.Header { return &r.Header },
		span:   func(r request.OvertimeRequest) (time.Time, time.Time) { return r.TargetDate, r.TargetDate },
	}}
}

type holidayRequestRepositoryImpl struct {
	*requestTable[request.HolidayRequest]
}

func NewHolidayRequestRepository(s *Store) request.HolidayRepository {
	return &holidayRequestRepositoryImpl{&requestTable[request.HolidayRequest]{
		s:      s,
		table:  func(st *state) map[string]request.HolidayRequest { return st.holidayRequests },
		header: func(r *request.HolidayRequest) *request.Header { return &r.Header },
		span:   func(r request.HolidayRequest) (time.Time, time.Time) { return r.StartDate, r.EndDate },
	}}
}

type scheduleRepositoryImpl struct {
	*requestTable[request.ScheduleDay]
}

func NewScheduleRepository(s *Store) request.ScheduleRepository {
	return &scheduleRepositoryImpl{&requestTable[request.ScheduleDay]{
		s:      s,
		table:  func(st *state) map[string]request.ScheduleDay { return st.scheduleDays },
		header: func(r *request.ScheduleDay) *request.Header { return &r.Header },
		span:   func(r request.ScheduleDay) (time.Time, time.Time) { return r.Date, r.Date },
	}}
}

func inMonth(d, monthStart time.Time) bool {
	return d.Year() == monthStart.Year() && d.Month() == monthStart.Month()
}

func (r *scheduleRepositoryImpl) ReplacePendingMonth(ctx context.Context, userID string, monthStart time.Time, days []request.ScheduleDay) ([]request.ScheduleDay, error) {
	defer r.s.lock(ctx)()
	tbl := r.s.st.scheduleDays
	for id, d := range tbl {
		if d.UserID == userID && d.IsPending() && inMonth(d.Date, monthStart) {
			delete(tbl, id)
		}
	}

	now := r.s.now()
	out := make([]request.ScheduleDay, 0, len(days))
	for _, d := range days {
		if d.ID == "" {
			d.ID = newID()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		tbl[d.ID] = d
		out = append(out, d)
	}
	return out, nil
}

func (r *scheduleRepositoryImpl) DecideMonth(ctx context.Context, userID string, monthStart time.Time, d request.Decision) (int, error) {
	defer r.s.lock(ctx)()
	tbl := r.s.st.scheduleDays
	count := 0
	for id, day := range tbl {
		if day.UserID != userID || !day.IsPending() || !inMonth(day.Date, monthStart) {
			continue
		}
		day.Apply(d)
		tbl[id] = day
		count++
	}
	return count, nil
}
