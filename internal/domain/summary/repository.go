package summary

import (
	"context"
)

type SummaryRepository interface {
	// UpsertWeekly overwrites the row for (user, iso year, iso week)
	UpsertWeekly(ctx context.Context, s WeeklySummary) (WeeklySummary, error)
	// UpsertMonthly overwrites the row for (user, year, month)
	UpsertMonthly(ctx context.Context, s MonthlySummary) (MonthlySummary, error)
	GetMonthly(ctx context.Context, userID string, year, month int) (MonthlySummary, error)
	// ListWeeklyByMonth returns the user's weeks whose Monday falls in the month
	ListWeeklyByMonth(ctx context.Context, userID string, year, month int) ([]WeeklySummary, error)
}
