package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/config"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/kintai-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/kintai-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/kintai-backend-go/internal/service/auth"
	holidayService "github.com/cmlabs-hris/kintai-backend-go/internal/service/holiday"
	locationService "github.com/cmlabs-hris/kintai-backend-go/internal/service/location"
	notificationService "github.com/cmlabs-hris/kintai-backend-go/internal/service/notification"
	requestService "github.com/cmlabs-hris/kintai-backend-go/internal/service/request"
	summaryService "github.com/cmlabs-hris/kintai-backend-go/internal/service/summary"
	userService "github.com/cmlabs-hris/kintai-backend-go/internal/service/user"
)

const version = "v1.0.0"

// repositories is the storage backend selected by STORAGE_DRIVER.
type repositories struct {
	tx              database.Transactor
	users           user.UserRepository
	tokens          auth.TokenRepository
	locations       location.LocationRepository
	attendances     attendance.AttendanceRepository
	breaks          attendance.BreakRepository
	companyHolidays holiday.HolidayRepository
	summaries       summary.SummaryRepository
	requests        requestService.Repositories
	close           func()
}

func postgresRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return repositories{}, err
	}
	if cfg.Database.MigrateOnBoot {
		if err := database.RunMigrations(db); err != nil {
			db.Close()
			return repositories{}, err
		}
	}

	users := postgresql.NewUserRepository(db)
	attendances := postgresql.NewAttendanceRepository(db)
	companyHolidays := postgresql.NewHolidayRepository(db)
	return repositories{
		tx:              postgresql.NewTransactor(db),
		users:           users,
		tokens:          postgresql.NewTokenRepository(db),
		locations:       postgresql.NewLocationRepository(db),
		attendances:     attendances,
		breaks:          postgresql.NewBreakRepository(db),
		companyHolidays: companyHolidays,
		summaries:       postgresql.NewSummaryRepository(db),
		requests: requestService.Repositories{
			Corrections:     postgresql.NewCorrectionRepository(db),
			Overtimes:       postgresql.NewOvertimeRepository(db),
			Holidays:        postgresql.NewHolidayRequestRepository(db),
			Schedules:       postgresql.NewScheduleRepository(db),
			Attendances:     attendances,
			Users:           users,
			CompanyHolidays: companyHolidays,
		},
		close: db.Close,
	}, nil
}

func memoryRepositories(clk clock.Clock) repositories {
	store := memory.NewStore(clk)
	users := memory.NewUserRepository(store)
	attendances := memory.NewAttendanceRepository(store)
	companyHolidays := memory.NewHolidayRepository(store)
	return repositories{
		tx:              store,
		users:           users,
		tokens:          memory.NewTokenRepository(store),
		locations:       memory.NewLocationRepository(store),
		attendances:     attendances,
		breaks:          memory.NewBreakRepository(store),
		companyHolidays: companyHolidays,
		summaries:       memory.NewSummaryRepository(store),
		requests: requestService.Repositories{
			Corrections:     memory.NewCorrectionRepository(store),
			Overtimes:       memory.NewOvertimeRepository(store),
			Holidays:        memory.NewHolidayRequestRepository(store),
			Schedules:       memory.NewScheduleRepository(store),
			Attendances:     attendances,
			Users:           users,
			CompanyHolidays: companyHolidays,
		},
		close: func() {},
	}
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System()
	loc := cfg.Location()

	var repos repositories
	switch cfg.Storage.Driver {
	case "postgres":
		repos, err = postgresRepositories(ctx, cfg)
		if err != nil {
			return fmt.Errorf("error connecting to database: %w", err)
		}
	case "memory":
		slog.Warn("Using in-memory storage; data is lost on restart")
		repos = memoryRepositories(clk)
	default:
		return fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
	defer repos.close()

	seeded, err := fixtures.Seed(ctx, repos.locations, repos.users, cfg.Admin)
	if err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}
	slog.Info("Defaults seeded", "locations", len(seeded.LocationIDs), "admin_id", seeded.AdminID)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, clk)
	if err != nil {
		return err
	}

	var mailer email.EmailService
	if cfg.SMTP.Host != "" {
		mailer, err = email.NewEmailService(cfg.SMTP)
		if err != nil {
			return fmt.Errorf("failed to initialize email service: %w", err)
		}
	}

	notifService := notificationService.NewNotificationService(repos.users, sse.NewHub(), mailer, notificationService.Config{})
	defer notifService.Stop()

	clockEngine := attendanceService.NewAttendanceService(
		repos.tx,
		repos.attendances,
		repos.breaks,
		repos.users,
		repos.locations,
		clk,
		attendanceService.Config{
			Location:             loc,
			DefaultWindowMinutes: cfg.Attendance.DefaultStandardWindowMinutes,
			FlatBreakMinutes:     cfg.Attendance.FlatBreakMinutes,
		},
	)
	requestSvc := requestService.NewRequestService(repos.tx, repos.requests, clockEngine, nil, notifService, clk, loc)
	summarySvc := summaryService.NewSummaryService(repos.summaries, repos.attendances, repos.users, repos.companyHolidays, cfg.Aggregation.Workers)
	authSvc := authService.NewAuthService(repos.tx, repos.users, JWTService, repos.tokens, clk)
	userSvc := userService.NewUserService(repos.users, repos.locations)
	locationSvc := locationService.NewLocationService(repos.locations)
	holidaySvc := holidayService.NewHolidayService(repos.companyHolidays)

	scheduler := cron.NewScheduler()
	cron.NewSummaryJobs(summarySvc, clk, loc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:         cfg.App.Env,
			Version:     version,
			FrontendURL: cfg.App.FrontendURL,
			LogLevel:    cfg.LogLevel(),
		},
		JWTService,
		appHTTP.Handlers{
			Auth:         appHTTP.NewAuthHandler(JWTService, authSvc),
			Attendance:   appHTTP.NewAttendanceHandler(clockEngine),
			Request:      appHTTP.NewRequestHandler(requestSvc),
			Summary:      appHTTP.NewSummaryHandler(summarySvc),
			Admin:        appHTTP.NewAdminHandler(userSvc, locationSvc, holidaySvc),
			Notification: appHTTP.NewNotificationHandler(notifService),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Driver, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Open SSE streams end when the notification hub closes in Stop.
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
