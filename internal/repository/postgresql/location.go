package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type locationRepositoryImpl struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepositoryImpl{db: db}
}

const locationColumns = `id, name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at, updated_at`

func scanLocation(row pgx.Row) (location.Location, error) {
	var l location.Location
	var start, end string
	if err := row.Scan(&l.ID, &l.Name, &start, &end, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return location.Location{}, err
	}

	var err error
	if l.StartTime, err = clock.ParseTimeOfDay(start); err != nil {
		return location.Location{}, err
	}
	if l.EndTime, err = clock.ParseTimeOfDay(end); err != nil {
		return location.Location{}, err
	}
	return l, nil
}

// GetByID implements location.LocationRepository.
func (r *locationRepositoryImpl) GetByID(ctx context.Context, id string) (location.Location, error) {
	q := GetQuerier(ctx, r.db)

	l, err := scanLocation(q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return location.Location{}, location.ErrLocationNotFound
		}
		return location.Location{}, fmt.Errorf("failed to get location: %w", err)
	}
	return l, nil
}

// List implements location.LocationRepository.
func (r *locationRepositoryImpl) List(ctx context.Context) ([]location.Location, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []location.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// Create implements location.LocationRepository.
func (r *locationRepositoryImpl) Create(ctx context.Context, loc location.Location) (location.Location, error) {
	q := GetQuerier(ctx, r.db)

	if loc.ID == "" {
		loc.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO locations (id, name, start_time, end_time)
		VALUES ($1, $2, $3::time, $4::time)
		RETURNING ` + locationColumns

	created, err := scanLocation(q.QueryRow(ctx, query, loc.ID, loc.Name, loc.StartTime.String(), loc.EndTime.String()))
	if err != nil {
		if isUniqueViolation(err, "locations_name_key") {
			return location.Location{}, location.ErrLocationNameExists
		}
		return location.Location{}, fmt.Errorf("failed to create location: %w", err)
	}
	return created, nil
}

// Update implements location.LocationRepository.
func (r *locationRepositoryImpl) Update(ctx context.Context, loc location.Location) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE locations
		SET name = $2, start_time = $3::time, end_time = $4::time, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, loc.ID, loc.Name, loc.StartTime.String(), loc.EndTime.String())
	if err != nil {
		if isUniqueViolation(err, "locations_name_key") {
			return location.ErrLocationNameExists
		}
		return fmt.Errorf("failed to update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return location.ErrLocationNotFound
	}
	return nil
}
