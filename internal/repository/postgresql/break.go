package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type breakRepository struct {
	db *database.DB
}

func NewBreakRepository(db *database.DB) attendance.BreakRepository {
	return &breakRepository{db: db}
}

const breakColumns = `id, attendance_id, start_time, end_time, duration_minutes, created_at`

func scanBreak(row pgx.Row) (attendance.Break, error) {
	var b attendance.Break
	err := row.Scan(&b.ID, &b.AttendanceID, &b.StartTime, &b.EndTime, &b.DurationMinutes, &b.CreatedAt)
	return b, err
}

// Create implements attendance.BreakRepository.
func (r *breakRepository) Create(ctx context.Context, b attendance.Break) (attendance.Break, error) {
	q := GetQuerier(ctx, r.db)

	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO attendance_breaks (id, attendance_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING ` + breakColumns

	created, err := scanBreak(q.QueryRow(ctx, query, b.ID, b.AttendanceID, b.StartTime.UTC()))
	if err != nil {
		if isUniqueViolation(err, "idx_attendance_breaks_one_open") {
			return attendance.Break{}, attendance.ErrBreakAlreadyOpen
		}
		return attendance.Break{}, fmt.Errorf("failed to start break: %w", err)
	}
	return created, nil
}

// GetOpen implements attendance.BreakRepository.
func (r *breakRepository) GetOpen(ctx context.Context, attendanceID string) (*attendance.Break, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + breakColumns + ` FROM attendance_breaks WHERE attendance_id = $1 AND end_time IS NULL`
	b, err := scanBreak(q.QueryRow(ctx, query, attendanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open break: %w", err)
	}
	return &b, nil
}

// Close implements attendance.BreakRepository.
func (r *breakRepository) Close(ctx context.Context, id string, end time.Time, durationMinutes int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_breaks
		SET end_time = $2, duration_minutes = $3
		WHERE id = $1 AND end_time IS NULL
	`
	tag, err := q.Exec(ctx, query, id, end.UTC(), durationMinutes)
	if err != nil {
		return fmt.Errorf("failed to end break: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNoOpenBreak
	}
	return nil
}

// ListByAttendance implements attendance.BreakRepository.
func (r *breakRepository) ListByAttendance(ctx context.Context, attendanceID string) ([]attendance.Break, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+breakColumns+` FROM attendance_breaks WHERE attendance_id = $1 ORDER BY start_time`, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	defer rows.Close()

	var breaks []attendance.Break
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		breaks = append(breaks, b)
	}
	return breaks, rows.Err()
}
