package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
)

type summaryRepositoryImpl struct {
	s *Store
}

func NewSummaryRepository(s *Store) summary.SummaryRepository {
	return &summaryRepositoryImpl{s: s}
}

func (r *summaryRepositoryImpl) UpsertWeekly(ctx context.Context, w summary.WeeklySummary) (summary.WeeklySummary, error) {
	defer r.s.lock(ctx)()
	w.UpdatedAt = r.s.now()
	r.s.st.weekly[weekKey{UserID: w.UserID, ISOYear: w.ISOYear, ISOWeek: w.ISOWeek}] = w
	return w, nil
}

func (r *summaryRepositoryImpl) UpsertMonthly(ctx context.Context, m summary.MonthlySummary) (summary.MonthlySummary, error) {
	defer r.s.lock(ctx)()
	m.UpdatedAt = r.s.now()
	r.s.st.monthly[monthKey{UserID: m.UserID, Year: m.Year, Month: m.Month}] = m
	return m, nil
}

func (r *summaryRepositoryImpl) GetMonthly(ctx context.Context, userID string, year, month int) (summary.MonthlySummary, error) {
	defer r.s.lock(ctx)()
	m, ok := r.s.st.monthly[monthKey{UserID: userID, Year: year, Month: month}]
	if !ok {
		return summary.MonthlySummary{}, summary.ErrSummaryNotFound
	}
	return m, nil
}

func (r *summaryRepositoryImpl) ListWeeklyByMonth(ctx context.Context, userID string, year, month int) ([]summary.WeeklySummary, error) {
	defer r.s.lock(ctx)()
	var out []summary.WeeklySummary
	for _, w := range r.s.st.weekly {
		if w.UserID == userID && w.StartDate.Year() == year && int(w.StartDate.Month()) == month {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
