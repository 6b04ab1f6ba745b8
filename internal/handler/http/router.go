package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the settings the router needs from config.
type RouterOptions struct {
	AllowedOrigins []string
	// Logger receives request logs. It should be built with
	// httplog.SchemaECS.Concise(...).ReplaceAttr so keys follow ECS.
	Logger   *slog.Logger
	LogLevel slog.Level
}

type Handlers struct {
	Auth         AuthHandler
	Timesheet    TimesheetHandler
	Project      ProjectHandler
	Notification NotificationHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
		// The SSE stream carries its token in the query string.
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/v1/notifications/stream"
		},
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

		// SSE authenticates with its own short-lived token.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/me", h.Auth.Me)

			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/options", h.Timesheet.Options)

				r.With(middleware.RequirePermission(user.PermissionTimesheetViewAll)).Get("/all", h.Timesheet.ListAll)
				r.With(middleware.RequirePermission(user.PermissionTimesheetExport)).Get("/export", h.Timesheet.Export)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Use(middleware.RequirePermission(user.PermissionTimesheetCreate))
					r.Get("/", h.Timesheet.ListMine)
					r.Post("/", h.Timesheet.Create)
					r.Post("/submit-all", h.Timesheet.SubmitAll)
					r.Put("/{id}", h.Timesheet.Update)
					r.Post("/{id}/submit", h.Timesheet.Submit)
				})

				r.Get("/{id}", h.Timesheet.Get)
				r.Delete("/{id}", h.Timesheet.Delete)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTimesheetApprove))
					r.Post("/{id}/approve", h.Timesheet.Approve)
					r.Post("/{id}/reject", h.Timesheet.Reject)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.Project.List)
				r.Get("/{id}/tasks", h.Project.ListTasks)
				r.Get("/{id}/manager", h.Project.GetManager)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Delete("/{id}", h.Notification.Delete)
				r.Get("/sse-token", h.Notification.GetSSEToken)

				r.Route("/preferences", func(r chi.Router) {
					r.Get("/", h.Notification.GetPreferences)
					r.Put("/", h.Notification.UpdatePreference)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionNotificationManage))
						r.Get("/users/{userID}", h.Notification.GetUserPreferences)
						r.Put("/users/{userID}", h.Notification.UpdateUserPreference)
					})
				})
			})
		})
	})

	return r
}
