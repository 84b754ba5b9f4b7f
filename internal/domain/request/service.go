package request

import (
	"context"
)

// RequestService submits and decides requests of every kind.
type RequestService interface {
	SubmitCorrection(ctx context.Context, userID string, req SubmitCorrectionRequest) (CorrectionResponse, error)
	SubmitOvertime(ctx context.Context, userID string, req SubmitOvertimeRequest) (OvertimeResponse, error)
	SubmitHoliday(ctx context.Context, userID string, req SubmitHolidayRequest) (HolidayResponse, error)
	SubmitScheduleDay(ctx context.Context, userID string, req SubmitScheduleDayRequest) (ScheduleDayResponse, error)
	SubmitScheduleMonth(ctx context.Context, userID string, req SubmitScheduleMonthRequest) ([]ScheduleDayResponse, error)

	Approve(ctx context.Context, kind Kind, id string, actorID string) (HeaderResponse, error)
	Reject(ctx context.Context, kind Kind, id string, actorID string) (HeaderResponse, error)
	Cancel(ctx context.Context, kind Kind, id string, actorID string) (HeaderResponse, error)

	// DecideScheduleMonth approves or rejects every PENDING day of a user's
	// month. Days already decided are skipped.
	DecideScheduleMonth(ctx context.Context, req MonthRequest, actorID string, approve bool) (BulkDecisionResponse, error)

	ListMine(ctx context.Context, userID string, req ListRequest) ([]ListItemResponse, error)
	ListAll(ctx context.Context, req ListRequest) ([]ListItemResponse, error)
	Stats(ctx context.Context) (StatsResponse, error)
	GroupedSchedules(ctx context.Context, req MonthRequest) ([]GroupedScheduleResponse, error)

	// Calendar renders approved schedule days and holidays of the month as iCalendar.
	Calendar(ctx context.Context, userID string, req MonthRequest) ([]byte, error)
}
