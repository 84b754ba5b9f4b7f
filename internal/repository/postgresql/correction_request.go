package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type correctionRepositoryImpl struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) request.CorrectionRepository {
	return &correctionRepositoryImpl{db: db}
}

const correctionColumns = headerColumns + `,
	target_date, requested_clock_in, requested_clock_out,
	current_clock_in, current_clock_out, reason`

func scanCorrection(row pgx.Row) (request.CorrectionRequest, error) {
	var (
		hs      headerScanner
		c       request.CorrectionRequest
		in, out *string
	)
	err := row.Scan(hs.dest(
		&c.TargetDate, &in, &out,
		&c.CurrentClockIn, &c.CurrentClockOut, &c.Reason,
	)...)
	if err != nil {
		return c, err
	}
	c.Header = hs.header(request.KindCorrection)
	if c.RequestedClockIn, err = parseStoredTime(in); err != nil {
		return c, err
	}
	if c.RequestedClockOut, err = parseStoredTime(out); err != nil {
		return c, err
	}
	return c, nil
}

func parseStoredTime(s *string) (*clock.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	t, err := clock.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatStoredTime(t *clock.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

// Create implements request.CorrectionRepository.
func (r *correctionRepositoryImpl) Create(ctx context.Context, c request.CorrectionRequest) (request.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)
	prepareHeader(&c.Header)

	query := `
		INSERT INTO correction_requests (
			id, user_id, target_date, requested_clock_in, requested_clock_out,
			current_clock_in, current_clock_out, reason, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + correctionColumns

	created, err := scanCorrection(q.QueryRow(ctx, query,
		c.ID, c.UserID, c.TargetDate,
		formatStoredTime(c.RequestedClockIn), formatStoredTime(c.RequestedClockOut),
		c.CurrentClockIn, c.CurrentClockOut, c.Reason,
		string(c.Status), c.CreatedAt,
	))
	if err != nil {
		return request.CorrectionRequest{}, fmt.Errorf("failed to create correction request: %w", err)
	}
	return created, nil
}

// GetByID implements request.CorrectionRepository.
func (r *correctionRepositoryImpl) GetByID(ctx context.Context, id string) (request.CorrectionRequest, error) {
	return getRow(ctx, r.db, `SELECT `+correctionColumns+` FROM correction_requests WHERE id = $1`, id, scanCorrection)
}

// Decide implements request.CorrectionRepository.
func (r *correctionRepositoryImpl) Decide(ctx context.Context, id string, d request.Decision) error {
	return decideRow(ctx, r.db, "correction_requests", id, d)
}

// List implements request.CorrectionRepository.
func (r *correctionRepositoryImpl) List(ctx context.Context, filter request.Filter) ([]request.CorrectionRequest, error) {
	where, args := filterClause(filter, "target_date", "target_date")
	query := `SELECT ` + correctionColumns + ` FROM correction_requests WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	return listRows(ctx, r.db, query, args, scanCorrection)
}
