package attendance

import (
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
)

const (
	DefaultStandardWindowMinutes = 8 * 60
	DefaultFlatBreakMinutes      = 60
	minutesPerDay                = 24 * 60
)

// Totals holds the derived minutes of a shift.
type Totals struct {
	BreakMinutes    int
	WorkMinutes     int
	OvertimeMinutes int
}

// Calculator derives break, work and overtime minutes. It never reads the
// clock or any store.
type Calculator struct {
	DefaultWindowMinutes int
	FlatBreakMinutes     int
}

func NewCalculator(defaultWindowMinutes, flatBreakMinutes int) Calculator {
	if defaultWindowMinutes <= 0 {
		defaultWindowMinutes = DefaultStandardWindowMinutes
	}
	if flatBreakMinutes < 0 {
		flatBreakMinutes = 0
	}
	return Calculator{
		DefaultWindowMinutes: defaultWindowMinutes,
		FlatBreakMinutes:     flatBreakMinutes,
	}
}

// ElapsedMinutes returns whole minutes from in to out, or 0 when out is not
// after in.
func ElapsedMinutes(in, out time.Time) int {
	if !out.After(in) {
		return 0
	}
	return int(out.Sub(in) / time.Minute)
}

// StandardWindowMinutes returns the location's window length, wrapping
// overnight windows, or the default window when loc is nil.
func (c Calculator) StandardWindowMinutes(loc *location.Location) int {
	if loc == nil {
		return c.DefaultWindowMinutes
	}
	window := loc.EndTime.Minutes() - loc.StartTime.Minutes()
	if window <= 0 {
		window += minutesPerDay
	}
	return window
}

// Overtime returns max(0, actual work - standard work), where both sides
// have breakMinutes deducted.
func (c Calculator) Overtime(clockIn, clockOut time.Time, breakMinutes int, loc *location.Location) int {
	total := ElapsedMinutes(clockIn, clockOut)
	actual := max(0, total-breakMinutes)
	standard := max(0, c.StandardWindowMinutes(loc)-breakMinutes)
	return max(0, actual-standard)
}

// BreakMinutes applies the break policy: the sum of recorded intervals when
// any exist, otherwise the flat deduction once the shift exceeds it. Open
// intervals are counted up to end.
func (c Calculator) BreakMinutes(clockIn, end time.Time, breaks []Break) int {
	if len(breaks) == 0 {
		if ElapsedMinutes(clockIn, end) > c.FlatBreakMinutes {
			return c.FlatBreakMinutes
		}
		return 0
	}

	total := 0
	for _, b := range breaks {
		switch {
		case b.DurationMinutes != nil:
			total += max(0, *b.DurationMinutes)
		case b.EndTime != nil:
			total += ElapsedMinutes(b.StartTime, *b.EndTime)
		default:
			total += ElapsedMinutes(b.StartTime, end)
		}
	}
	return total
}

// Compute derives all totals for a shift ending at end.
func (c Calculator) Compute(clockIn, end time.Time, breaks []Break, loc *location.Location) Totals {
	breakMinutes := c.BreakMinutes(clockIn, end, breaks)
	work := max(0, ElapsedMinutes(clockIn, end)-breakMinutes)
	return Totals{
		BreakMinutes:    breakMinutes,
		WorkMinutes:     work,
		OvertimeMinutes: c.Overtime(clockIn, end, breakMinutes, loc),
	}
}

// Apply writes t onto a.
func (t Totals) Apply(a *Attendance) {
	b, w, o := t.BreakMinutes, t.WorkMinutes, t.OvertimeMinutes
	a.BreakMinutes = &b
	a.WorkMinutes = &w
	a.OvertimeMinutes = &o
}
