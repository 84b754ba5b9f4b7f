package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) request.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

const scheduleColumns = headerColumns + `, date, work_type`

func scanScheduleDay(row pgx.Row) (request.ScheduleDay, error) {
	var (
		hs       headerScanner
		s        request.ScheduleDay
		workType string
	)
	if err := row.Scan(hs.dest(&s.Date, &workType)...); err != nil {
		return s, err
	}
	s.Header = hs.header(request.KindSchedule)
	s.WorkType = request.WorkType(workType)
	return s, nil
}

const insertScheduleDay = `
	INSERT INTO schedule_days (id, user_id, date, work_type, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + scheduleColumns

func (r *scheduleRepositoryImpl) Create(ctx context.Context, s request.ScheduleDay) (request.ScheduleDay, error) {
	q := GetQuerier(ctx, r.db)
	prepareHeader(&s.Header)

	created, err := scanScheduleDay(q.QueryRow(ctx, insertScheduleDay,
		s.ID, s.UserID, s.Date, string(s.WorkType), string(s.Status), s.CreatedAt,
	))
	if err != nil {
		return request.ScheduleDay{}, fmt.Errorf("failed to create schedule day: %w", err)
	}
	return created, nil
}

func (r *scheduleRepositoryImpl) GetByID(ctx context.Context, id string) (request.ScheduleDay, error) {
	return getRow(ctx, r.db, `SELECT `+scheduleColumns+` FROM schedule_days WHERE id = $1`, id, scanScheduleDay)
}

func (r *scheduleRepositoryImpl) Decide(ctx context.Context, id string, d request.Decision) error {
	return decideRow(ctx, r.db, "schedule_days", id, d)
}

func (r *scheduleRepositoryImpl) List(ctx context.Context, filter request.Filter) ([]request.ScheduleDay, error) {
	where, args := filterClause(filter, "date", "date")
	query := `SELECT ` + scheduleColumns + ` FROM schedule_days WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	return listRows(ctx, r.db, query, args, scanScheduleDay)
}

// ReplacePendingMonth should run inside a transaction so the delete and the
// inserts land together.
func (r *scheduleRepositoryImpl) ReplacePendingMonth(ctx context.Context, userID string, monthStart time.Time, days []request.ScheduleDay) ([]request.ScheduleDay, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		DELETE FROM schedule_days
		WHERE user_id = $1 AND status = 'PENDING' AND date >= $2 AND date < $3
	`, userID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to clear pending schedule: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range days {
		prepareHeader(&days[i].Header)
		d := days[i]
		batch.Queue(insertScheduleDay, d.ID, d.UserID, d.Date, string(d.WorkType), string(d.Status), d.CreatedAt)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]request.ScheduleDay, 0, len(days))
	for range days {
		created, err := scanScheduleDay(results.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("failed to insert schedule day: %w", err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (r *scheduleRepositoryImpl) DecideMonth(ctx context.Context, userID string, monthStart time.Time, d request.Decision) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schedule_days
		SET status = $4, approver_id = $5, decided_by = $6, outcome = $7, decided_at = $8
		WHERE user_id = $1 AND status = 'PENDING' AND date >= $2 AND date < $3
	`
	args := append([]interface{}{userID, monthStart, monthStart.AddDate(0, 1, 0)}, decisionArgs(d)...)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to decide schedule month: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
