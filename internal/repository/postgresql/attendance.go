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

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, user_id, date, clock_in, clock_out,
	break_minutes, work_minutes, overtime_minutes,
	created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date, &att.ClockIn, &att.ClockOut,
		&att.BreakMinutes, &att.WorkMinutes, &att.OvertimeMinutes,
		&att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	return attendances, rows.Err()
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendances WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1 AND date = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by date: %w", err)
	}
	return &att, nil
}

// LockOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockOpen(ctx context.Context, userID string, since time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1
		  AND date >= $2
		  AND clock_in IS NOT NULL
		  AND clock_out IS NULL
		ORDER BY date DESC, created_at DESC
		LIMIT 1
		FOR UPDATE
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, userID, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock open attendance: %w", err)
	}
	return &att, nil
}

// UpsertClockIn implements attendance.AttendanceRepository. The conflict
// branch only fires while the stored clock-in is empty, so a second clock-in
// returns no row.
func (a *attendanceRepository) UpsertClockIn(ctx context.Context, userID string, date time.Time, at time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (id, user_id, date, clock_in, break_minutes, work_minutes, overtime_minutes)
		VALUES ($1, $2, $3, $4, 0, 0, 0)
		ON CONFLICT ON CONSTRAINT attendances_user_date_key DO UPDATE
		SET clock_in = EXCLUDED.clock_in,
		    break_minutes = 0,
		    work_minutes = 0,
		    overtime_minutes = 0,
		    updated_at = NOW()
		WHERE attendances.clock_in IS NULL
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query, uuid.Must(uuid.NewV7()).String(), userID, date, at.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err, "attendances_user_date_key") {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to clock in: %w", err)
	}
	return att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET clock_in = $2,
		    clock_out = $3,
		    break_minutes = $4,
		    work_minutes = $5,
		    overtime_minutes = $6,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		att.ID, att.ClockIn, att.ClockOut,
		att.BreakMinutes, att.WorkMinutes, att.OvertimeMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByUserAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]attendance.Attendance, error) {
	return a.ListByRange(ctx, from, to, &userID)
}

// ListByRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByRange(ctx context.Context, from, to time.Time, userID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	where := "date >= $1 AND date <= $2"
	args := []interface{}{from, to}
	argIdx := 3

	if userID != nil && *userID != "" {
		where += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *userID)
		argIdx++
	}

	query := fmt.Sprintf(`SELECT %s FROM attendances WHERE %s ORDER BY date, user_id, created_at`, attendanceColumns, where)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	return collectAttendances(rows)
}

// ListOpenByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date = $1 AND clock_in IS NOT NULL AND clock_out IS NULL
		ORDER BY clock_in
	`
	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}
	return collectAttendances(rows)
}
