package summary

import (
	"context"
	"time"
)

// SummaryService is the aggregation engine.
type SummaryService interface {
	AggregateWeek(ctx context.Context, userID string, day time.Time) (WeeklySummary, error)
	AggregateMonth(ctx context.Context, userID string, year int, month time.Month) (MonthlySummary, error)

	// RunWeek and RunMonth aggregate every active user. A failing user is
	// logged and counted; cancellation stops the run between users.
	RunWeek(ctx context.Context, day time.Time) (BatchResult, error)
	RunMonth(ctx context.Context, year int, month time.Month) (BatchResult, error)

	GetMonthly(ctx context.Context, userID string, req PeriodRequest) (MonthlySummaryResponse, error)
	ListWeekly(ctx context.Context, userID string, req PeriodRequest) ([]WeeklySummaryResponse, error)
	ExportMonthly(ctx context.Context, userID string, req PeriodRequest) ([]byte, string, error)
}
