package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

var tables = []string{
	"monthly_summaries",
	"weekly_summaries",
	"company_holidays",
	"schedule_days",
	"holiday_requests",
	"overtime_requests",
	"correction_requests",
	"attendance_breaks",
	"attendances",
	"refresh_tokens",
	"users",
	"locations",
}

// newTestDB connects to TEST_DATABASE_URL, migrates it and empties every
// table. Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.RunMigrations(db))

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
	return db
}

func createTestUser(t *testing.T, db *database.DB, username string) user.User {
	t.Helper()

	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		Username:     username,
		PasswordHash: "hash",
		Role:         user.RoleGeneral,
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
