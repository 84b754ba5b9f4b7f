package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the deployment details the router logs and allows.
type RouterConfig struct {
	Env         string
	Version     string
	FrontendURL string
	LogLevel    slog.Level
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         AuthHandler
	Attendance   AttendanceHandler
	Request      RequestHandler
	Summary      SummaryHandler
	Admin        AdminHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "kintai"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// EventSource cannot send headers, so the stream also takes ?token=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, middleware.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Get("/notifications/stream", h.Notification.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Post("/breaks/start", h.Attendance.StartBreak)
				r.Post("/breaks/end", h.Attendance.EndBreak)
				r.Get("/today", h.Attendance.Today)
				r.Get("/", h.Attendance.List)
				r.Get("/{id}", h.Attendance.Get)
				r.Get("/{id}/breaks", h.Attendance.ListBreaks)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/corrections", h.Request.SubmitCorrection)
				r.Post("/overtime", h.Request.SubmitOvertime)
				r.Post("/holidays", h.Request.SubmitHoliday)
				r.Post("/schedules", h.Request.SubmitScheduleDay)
				r.Put("/schedules/month", h.Request.SubmitScheduleMonth)
				r.Get("/my", h.Request.ListMine)
				r.Post("/{kind}/{id}/cancel", h.Request.Cancel)
			})

			r.Route("/summaries", func(r chi.Router) {
				r.Get("/weekly", h.Summary.Weekly)
				r.Get("/monthly", h.Summary.Monthly)
				r.Get("/monthly/export", h.Summary.ExportMonthly)
			})

			r.Get("/calendar.ics", h.Request.Calendar)

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionRequestDecide))
					r.Get("/requests", h.Request.ListAll)
					r.Get("/requests/stats", h.Request.Stats)
					r.Post("/requests/{kind}/{id}/approve", h.Request.Approve)
					r.Post("/requests/{kind}/{id}/reject", h.Request.Reject)
					r.Post("/schedules/{userID}/{month}/approve", h.Request.ApproveScheduleMonth)
					r.Post("/schedules/{userID}/{month}/reject", h.Request.RejectScheduleMonth)
					r.Get("/schedules/grouped", h.Request.GroupedSchedules)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/attendance/working", h.Attendance.StillWorking)
					r.Get("/attendance/export", h.Attendance.Export)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSummaryRun))
					r.Post("/summaries/weekly/run", h.Summary.RunWeek)
					r.Post("/summaries/monthly/run", h.Summary.RunMonth)
					r.Post("/summaries/users/{userID}/monthly", h.Summary.AggregateUserMonth)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionHolidayManage))
					r.Get("/holidays", h.Admin.ListHolidays)
					r.Post("/holidays", h.Admin.CreateHoliday)
					r.Delete("/holidays/{id}", h.Admin.DeleteHoliday)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionUserManage))
					r.Get("/users", h.Admin.ListUsers)
					r.Post("/users", h.Admin.CreateUser)
					r.Put("/users/{id}/location", h.Admin.AssignLocation)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLocationManage))
					r.Get("/locations", h.Admin.ListLocations)
					r.Post("/locations", h.Admin.CreateLocation)
					r.Put("/locations/{id}", h.Admin.UpdateLocation)
				})
			})
		})
	})
	return r
}
