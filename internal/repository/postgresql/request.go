package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// headerColumns are selected first by every request table.
const headerColumns = `id, user_id, status, approver_id, decided_by, outcome, decided_at, created_at`

type headerScanner struct {
	h         request.Header
	status    string
	decidedBy *string
	outcome   *string
}

func (s *headerScanner) dest(more ...interface{}) []interface{} {
	return append([]interface{}{
		&s.h.ID, &s.h.UserID, &s.status, &s.h.ApproverID,
		&s.decidedBy, &s.outcome, &s.h.DecidedAt, &s.h.CreatedAt,
	}, more...)
}

func (s *headerScanner) header(kind request.Kind) request.Header {
	h := s.h
	h.Kind = kind
	h.Status = request.Status(s.status)
	if s.decidedBy != nil {
		by := request.DecidedBy(*s.decidedBy)
		h.DecidedBy = &by
	}
	if s.outcome != nil {
		o := request.Outcome(*s.outcome)
		h.Outcome = &o
	}
	return h
}

// prepareHeader fills the generated fields of a new request. CreatedAt is
// set by request.NewHeader from the service clock.
func prepareHeader(h *request.Header) {
	if h.ID == "" {
		h.ID = uuid.Must(uuid.NewV7()).String()
	}
	if h.Status == "" {
		h.Status = request.StatusPending
	}
}

func decisionArgs(d request.Decision) []interface{} {
	return []interface{}{string(d.Status()), d.ApproverID(), string(d.By), string(d.Outcome), d.At.UTC()}
}

// decideRow moves a PENDING row to its terminal state. A row that is not
// PENDING any more is reported as ErrAlreadyDecided.
func decideRow(ctx context.Context, db *database.DB, table, id string, d request.Decision) error {
	q := GetQuerier(ctx, db)

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, approver_id = $3, decided_by = $4, outcome = $5, decided_at = $6
		WHERE id = $1 AND status = 'PENDING'
	`, table)
	tag, err := q.Exec(ctx, query, append([]interface{}{id}, decisionArgs(d)...)...)
	if err != nil {
		if isInvalidID(err) {
			return request.ErrRequestNotFound
		}
		return fmt.Errorf("failed to decide %s: %w", table, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table), id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s: %w", table, err)
	}
	if !exists {
		return request.ErrRequestNotFound
	}
	return request.ErrAlreadyDecided
}

// filterClause renders f against a table whose target span is
// startCol..endCol.
func filterClause(f request.Filter, startCol, endCol string) (string, []interface{}) {
	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if f.UserID != nil {
		where += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *f.UserID)
		argIdx++
	}
	if f.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*f.Status))
		argIdx++
	}
	if f.From != nil {
		where += fmt.Sprintf(" AND %s >= $%d", endCol, argIdx)
		args = append(args, *f.From)
		argIdx++
	}
	if f.To != nil {
		where += fmt.Sprintf(" AND %s <= $%d", startCol, argIdx)
		args = append(args, *f.To)
	}
	return where, args
}

func getRow[T any](ctx context.Context, db *database.DB, query, id string, scan func(pgx.Row) (T, error)) (T, error) {
	q := GetQuerier(ctx, db)

	r, err := scan(q.QueryRow(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return zero, request.ErrRequestNotFound
		}
		return zero, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

func listRows[T any](ctx context.Context, db *database.DB, query string, args []interface{}, scan func(pgx.Row) (T, error)) ([]T, error) {
	q := GetQuerier(ctx, db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
