package request

import (
	"context"
	"time"
)

// Filter narrows request listings. Nil fields are ignored; From/To match
// against the request's target date.
type Filter struct {
	UserID *string
	Status *Status
	From   *time.Time
	To     *time.Time
}

// Store is the persistence contract every request kind shares.
type Store[T any] interface {
	Create(ctx context.Context, r T) (T, error)
	GetByID(ctx context.Context, id string) (T, error)
	// Decide records d only while the row is still PENDING and returns
	// ErrAlreadyDecided otherwise.
	Decide(ctx context.Context, id string, d Decision) error
	List(ctx context.Context, filter Filter) ([]T, error)
}

type CorrectionRepository interface {
	Store[CorrectionRequest]
}

type OvertimeRepository interface {
	Store[OvertimeRequest]
}

type HolidayRepository interface {
	Store[HolidayRequest]
}

type ScheduleRepository interface {
	Store[ScheduleDay]

	// ReplacePendingMonth drops the user's PENDING days in the month starting
	// at monthStart and inserts days in their place.
	ReplacePendingMonth(ctx context.Context, userID string, monthStart time.Time, days []ScheduleDay) ([]ScheduleDay, error)

	// DecideMonth applies d to every PENDING day of the user's month and
	// returns how many rows changed.
	DecideMonth(ctx context.Context, userID string, monthStart time.Time, d Decision) (int, error)
}
