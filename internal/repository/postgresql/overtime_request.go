package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) request.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

const overtimeColumns = headerColumns + `, target_date, minutes, reason`

func scanOvertime(row pgx.Row) (request.OvertimeRequest, error) {
	var (
		hs headerScanner
		o  request.OvertimeRequest
	)
	if err := row.Scan(hs.dest(&o.TargetDate, &o.Minutes, &o.Reason)...); err != nil {
		return o, err
	}
	o.Header = hs.header(request.KindOvertime)
	return o, nil
}

func (r *overtimeRepositoryImpl) Create(ctx context.Context, o request.OvertimeRequest) (request.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)
	prepareHeader(&o.Header)

	query := `
		INSERT INTO overtime_requests (id, user_id, target_date, minutes, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + overtimeColumns

	created, err := scanOvertime(q.QueryRow(ctx, query,
		o.ID, o.UserID, o.TargetDate, o.Minutes, o.Reason, string(o.Status), o.CreatedAt,
	))
	if err != nil {
		return request.OvertimeRequest{}, fmt.Errorf("failed to create overtime request: %w", err)
	}
	return created, nil
}

func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id string) (request.OvertimeRequest, error) {
	return getRow(ctx, r.db, `SELECT `+overtimeColumns+` FROM overtime_requests WHERE id = $1`, id, scanOvertime)
}

func (r *overtimeRepositoryImpl) Decide(ctx context.Context, id string, d request.Decision) error {
	return decideRow(ctx, r.db, "overtime_requests", id, d)
}

func (r *overtimeRepositoryImpl) List(ctx context.Context, filter request.Filter) ([]request.OvertimeRequest, error) {
	where, args := filterClause(filter, "target_date", "target_date")
	query := `SELECT ` + overtimeColumns + ` FROM overtime_requests WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	return listRows(ctx, r.db, query, args, scanOvertime)
}
