package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRequestRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRequestRepository(db *database.DB) request.HolidayRepository {
	return &holidayRequestRepositoryImpl{db: db}
}

const holidayRequestColumns = headerColumns + `, start_date, end_date, holiday_type, reason`

func scanHolidayRequest(row pgx.Row) (request.HolidayRequest, error) {
	var (
		hs          headerScanner
		h           request.HolidayRequest
		holidayType string
	)
	if err := row.Scan(hs.dest(&h.StartDate, &h.EndDate, &holidayType, &h.Reason)...); err != nil {
		return h, err
	}
	h.Header = hs.header(request.KindHoliday)
	h.HolidayType = request.HolidayType(holidayType)
	return h, nil
}

func (r *holidayRequestRepositoryImpl) Create(ctx context.Context, h request.HolidayRequest) (request.HolidayRequest, error) {
	q := GetQuerier(ctx, r.db)
	prepareHeader(&h.Header)

	query := `
		INSERT INTO holiday_requests (id, user_id, start_date, end_date, holiday_type, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + holidayRequestColumns

	created, err := scanHolidayRequest(q.QueryRow(ctx, query,
		h.ID, h.UserID, h.StartDate, h.EndDate, string(h.HolidayType), h.Reason, string(h.Status), h.CreatedAt,
	))
	if err != nil {
		return request.HolidayRequest{}, fmt.Errorf("failed to create holiday request: %w", err)
	}
	return created, nil
}

func (r *holidayRequestRepositoryImpl) GetByID(ctx context.Context, id string) (request.HolidayRequest, error) {
	return getRow(ctx, r.db, `SELECT `+holidayRequestColumns+` FROM holiday_requests WHERE id = $1`, id, scanHolidayRequest)
}

func (r *holidayRequestRepositoryImpl) Decide(ctx context.Context, id string, d request.Decision) error {
	return decideRow(ctx, r.db, "holiday_requests", id, d)
}

// List matches From/To against any overlap with the requested span.
func (r *holidayRequestRepositoryImpl) List(ctx context.Context, filter request.Filter) ([]request.HolidayRequest, error) {
	where, args := filterClause(filter, "start_date", "end_date")
	query := `SELECT ` + holidayRequestColumns + ` FROM holiday_requests WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	return listRows(ctx, r.db, query, args, scanHolidayRequest)
}
