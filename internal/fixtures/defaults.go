package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/kintai-backend-go/internal/config"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"golang.org/x/crypto/bcrypt"
)

// ==========================================
// DEFAULT LOCATIONS
// ==========================================

// GetDefaultLocations returns the standard work windows seeded into an
// empty installation.
func GetDefaultLocations() []location.Location {
	return []location.Location{
		{
			Name:      "Head Office",
			StartTime: clock.MustTimeOfDay("09:00"),
			EndTime:   clock.MustTimeOfDay("18:00"),
		},
		{
			Name:      "Afternoon Shift",
			StartTime: clock.MustTimeOfDay("13:00"),
			EndTime:   clock.MustTimeOfDay("22:00"),
		},
		// Crosses midnight
		{
			Name:      "Night Shift",
			StartTime: clock.MustTimeOfDay("22:00"),
			EndTime:   clock.MustTimeOfDay("06:00"),
		},
	}
}

// ==========================================
// SEEDING
// ==========================================

// SeedResult reports what Seed created.
type SeedResult struct {
	LocationIDs map[string]string // name -> id
	AdminID     string
}

// Seed creates the default locations when none exist and the configured
// administrator when that username is not taken. It is safe to run on every
// boot.
func Seed(ctx context.Context, locations location.LocationRepository, users user.UserRepository, admin config.AdminSeedConfig) (SeedResult, error) {
	result := SeedResult{LocationIDs: make(map[string]string)}

	existing, err := locations.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list locations: %w", err)
	}
	if len(existing) == 0 {
		for _, loc := range GetDefaultLocations() {
			created, err := locations.Create(ctx, loc)
			if err != nil {
				return result, fmt.Errorf("failed to seed location %s: %w", loc.Name, err)
			}
			result.LocationIDs[created.Name] = created.ID
		}
		slog.Info("Seeded default locations", "count", len(result.LocationIDs))
	} else {
		for _, loc := range existing {
			result.LocationIDs[loc.Name] = loc.ID
		}
	}

	if admin.Username == "" || admin.Password == "" {
		return result, nil
	}

	current, err := users.GetByUsername(ctx, admin.Username)
	if err == nil {
		result.AdminID = current.ID
		return result, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return result, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return result, fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := user.User{
		Username:     admin.Username,
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
		IsActive:     true,
	}
	if admin.Email != "" {
		email := admin.Email
		newAdmin.Email = &email
	}
	if id, ok := result.LocationIDs["Head Office"]; ok {
		newAdmin.LocationID = &id
	}

	created, err := users.Create(ctx, newAdmin)
	if err != nil {
		return result, fmt.Errorf("failed to seed admin: %w", err)
	}
	result.AdminID = created.ID
	slog.Info("Seeded administrator", "username", created.Username)

	return result, nil
}
