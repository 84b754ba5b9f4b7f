package location

import (
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
)

// Location carries the standard work window used as the overtime baseline.
// An end time at or before the start time means the window crosses midnight.
type Location struct {
	ID        string
	Name      string
	StartTime clock.TimeOfDay
	EndTime   clock.TimeOfDay
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOvernight reports whether the window spans midnight.
func (l Location) IsOvernight() bool {
	return l.EndTime.Minutes() <= l.StartTime.Minutes()
}

// WindowMinutes returns the length of the standard window.
func (l Location) WindowMinutes() int {
	w := l.EndTime.Minutes() - l.StartTime.Minutes()
	if w <= 0 {
		w += 24 * 60
	}
	return w
}
