package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `id, date, name, created_by, created_at`

func scanHoliday(row pgx.Row) (holiday.CompanyHoliday, error) {
	var h holiday.CompanyHoliday
	err := row.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedBy, &h.CreatedAt)
	return h, err
}

func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.CompanyHoliday) (holiday.CompanyHoliday, error) {
	q := GetQuerier(ctx, r.db)

	if h.ID == "" {
		h.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO company_holidays (id, date, name, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + holidayColumns

	created, err := scanHoliday(q.QueryRow(ctx, query, h.ID, h.Date, h.Name, h.CreatedBy))
	if err != nil {
		if isUniqueViolation(err, "company_holidays_date_key") {
			return holiday.CompanyHoliday{}, holiday.ErrHolidayDateExists
		}
		return holiday.CompanyHoliday{}, fmt.Errorf("failed to create company holiday: %w", err)
	}
	return created, nil
}

func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM company_holidays WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return holiday.ErrHolidayNotFound
		}
		return fmt.Errorf("failed to delete company holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

func (r *holidayRepositoryImpl) ListBetween(ctx context.Context, from, to time.Time) ([]holiday.CompanyHoliday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+holidayColumns+` FROM company_holidays WHERE date >= $1 AND date <= $2 ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list company holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.CompanyHoliday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
