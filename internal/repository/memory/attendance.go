package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
)

type attendanceRepositoryImpl struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{s: s}
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()
	a, ok := r.s.st.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *attendanceRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	defer r.s.lock(ctx)()
	return r.findByUserAndDate(userID, date), nil
}

func (r *attendanceRepositoryImpl) findByUserAndDate(userID string, date time.Time) *attendance.Attendance {
	var found *attendance.Attendance
	for _, a := range r.s.st.attendances {
		if a.UserID != userID || !sameDate(a.Date, date) {
			continue
		}
		if found == nil || a.CreatedAt.After(found.CreatedAt) {
			rec := a
			found = &rec
		}
	}
	return found
}

func (r *attendanceRepositoryImpl) LockOpen(ctx context.Context, userID string, since time.Time) (*attendance.Attendance, error) {
	defer r.s.lock(ctx)()
	var found *attendance.Attendance
	for _, a := range r.s.st.attendances {
		if a.UserID != userID || !a.IsOpen() || a.Date.Format(dateKey) < since.Format(dateKey) {
			continue
		}
		if found == nil || a.Date.After(found.Date) || (a.Date.Equal(found.Date) && a.CreatedAt.After(found.CreatedAt)) {
			rec := a
			found = &rec
		}
	}
	return found, nil
}

func (r *attendanceRepositoryImpl) UpsertClockIn(ctx context.Context, userID string, date time.Time, at time.Time) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	zero := func() *int { z := 0; return &z }
	clockIn := at
	now := r.s.now()

	if existing := r.findByUserAndDate(userID, date); existing != nil {
		if existing.ClockIn != nil {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
		}
		existing.ClockIn = &clockIn
		existing.BreakMinutes, existing.WorkMinutes, existing.OvertimeMinutes = zero(), zero(), zero()
		existing.UpdatedAt = now
		r.s.st.attendances[existing.ID] = *existing
		return *existing, nil
	}

	a := attendance.Attendance{
		ID:              newID(),
		UserID:          userID,
		Date:            date,
		ClockIn:         &clockIn,
		BreakMinutes:    zero(),
		WorkMinutes:     zero(),
		OvertimeMinutes: zero(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.s.st.attendances[a.ID] = a
	return a, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) error {
	defer r.s.lock(ctx)()
	current, ok := r.s.st.attendances[a.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if a.ClockIn != nil && a.ClockOut != nil && !a.ClockOut.After(*a.ClockIn) {
		return fmt.Errorf("failed to update attendance: clock-out must be after clock-in")
	}
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = r.s.now()
	r.s.st.attendances[a.ID] = a
	return nil
}

func (r *attendanceRepositoryImpl) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]attendance.Attendance, error) {
	return r.ListByRange(ctx, from, to, &userID)
}

func (r *attendanceRepositoryImpl) ListByRange(ctx context.Context, from, to time.Time, userID *string) ([]attendance.Attendance, error) {
	defer r.s.lock(ctx)()
	var out []attendance.Attendance
	for _, a := range r.s.st.attendances {
		if userID != nil && a.UserID != *userID {
			continue
		}
		if within(a.Date, from, to) {
			out = append(out, a)
		}
	}
	sortAttendances(out)
	return out, nil
}

func (r *attendanceRepositoryImpl) ListOpenByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	defer r.s.lock(ctx)()
	var out []attendance.Attendance
	for _, a := range r.s.st.attendances {
		if a.IsOpen() && sameDate(a.Date, date) {
			out = append(out, a)
		}
	}
	sortAttendances(out)
	return out, nil
}

func sortAttendances(list []attendance.Attendance) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		if list[i].UserID != list[j].UserID {
			return list[i].UserID < list[j].UserID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

type breakRepositoryImpl struct {
	s *Store
}

func NewBreakRepository(s *Store) attendance.BreakRepository {
	return &breakRepositoryImpl{s: s}
}

func (r *breakRepositoryImpl) Create(ctx context.Context, b attendance.Break) (attendance.Break, error) {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.st.breaks {
		if existing.AttendanceID == b.AttendanceID && existing.IsOpen() {
			return attendance.Break{}, attendance.ErrBreakAlreadyOpen
		}
	}
	if b.ID == "" {
		b.ID = newID()
	}
	b.CreatedAt = r.s.now()
	r.s.st.breaks[b.ID] = b
	return b, nil
}

func (r *breakRepositoryImpl) GetOpen(ctx context.Context, attendanceID string) (*attendance.Break, error) {
	defer r.s.lock(ctx)()
	for _, b := range r.s.st.breaks {
		if b.AttendanceID == attendanceID && b.IsOpen() {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (r *breakRepositoryImpl) Close(ctx context.Context, id string, end time.Time, durationMinutes int) error {
	defer r.s.lock(ctx)()
	b, ok := r.s.st.breaks[id]
	if !ok || !b.IsOpen() {
		return attendance.ErrNoOpenBreak
	}
	endTime := end
	duration := durationMinutes
	b.EndTime = &endTime
	b.DurationMinutes = &duration
	r.s.st.breaks[id] = b
	return nil
}

func (r *breakRepositoryImpl) ListByAttendance(ctx context.Context, attendanceID string) ([]attendance.Break, error) {
	defer r.s.lock(ctx)()
	var out []attendance.Break
	for _, b := range r.s.st.breaks {
		if b.AttendanceID == attendanceID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}
