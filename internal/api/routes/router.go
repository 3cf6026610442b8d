package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/corpcare/agentbooking/internal/api/handlers"
	"github.com/corpcare/agentbooking/internal/api/middleware"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth          *handlers.AuthHandler
	Agents        *handlers.AgentHandler
	Doctors       *handlers.DoctorHandler
	Appointments  *handlers.AppointmentHandler
	Payments      *handlers.PaymentHandler
	Notifications *handlers.NotificationHandler
	Reports       *handlers.ReportHandler
	Stream        *handlers.SSEHandler
	WebSocket     *handlers.WebSocketHandler
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	handlers        Handlers
	authenticator   *middleware.Authenticator
	loginLimiter    *middleware.RateLimiter
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	healthChecks    map[string]HealthCheck
	metrics         *observability.Metrics
}

// Options carries the optional router dependencies
type Options struct {
	LoginLimiter    *middleware.RateLimiter
	CacheMiddleware *middleware.CacheMiddleware
	AllowedOrigins  []string
	HealthChecks    map[string]HealthCheck
	Metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(h Handlers, authenticator *middleware.Authenticator, opts Options) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		handlers:        h,
		authenticator:   authenticator,
		loginLimiter:    opts.LoginLimiter,
		cacheMiddleware: opts.CacheMiddleware,
		allowedOrigins:  opts.AllowedOrigins,
		healthChecks:    opts.HealthChecks,
		metrics:         opts.Metrics,
	}
}

type chain []func(http.Handler) http.Handler

func (c chain) then(h http.HandlerFunc) http.Handler {
	var handler http.Handler = h
	for i := len(c) - 1; i >= 0; i-- {
		handler = c[i](handler)
	}
	return handler
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	authed := chain{r.authenticator.Authenticate}
	agentOnly := chain{r.authenticator.Authenticate, middleware.RequireRole(entities.UserRoleAgent)}
	adminOnly := chain{r.authenticator.Authenticate, middleware.RequireRole(entities.UserRoleAdmin)}
	staff := chain{r.authenticator.Authenticate, middleware.RequireRole(entities.UserRoleAgent, entities.UserRoleAdmin)}

	cachedRead := append(chain{}, authed...)
	cachedAdmin := append(chain{}, adminOnly...)
	cachedRead = append(cachedRead, r.cacheMiddleware.Middleware)
	cachedAdmin = append(cachedAdmin, r.cacheMiddleware.Middleware)

	limited := chain{}
	if r.loginLimiter != nil {
		limited = append(limited, r.loginLimiter.Middleware)
	}

	r.mux.HandleFunc("GET /health", r.health)

	// Auth
	auth := r.handlers.Auth
	r.mux.Handle("POST /api/auth/register", limited.then(auth.Register))
	r.mux.Handle("POST /api/auth/login", limited.then(auth.Login))
	r.mux.Handle("POST /api/auth/refresh", limited.then(auth.Refresh))
	r.mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	r.mux.Handle("GET /api/auth/me", authed.then(auth.Me))

	// Agents
	agents := r.handlers.Agents
	r.mux.Handle("GET /api/agents/me", agentOnly.then(agents.GetProfile))
	r.mux.Handle("PUT /api/agents/me", agentOnly.then(agents.UpdateProfile))
	r.mux.Handle("GET /api/agents/me/dashboard", agentOnly.then(agents.Dashboard))
	r.mux.Handle("GET /api/agents", adminOnly.then(agents.ListAgents))
	r.mux.Handle("PATCH /api/agents/{id}/verify", adminOnly.then(agents.VerifyAgent))
	r.mux.Handle("PATCH /api/agents/{id}/status", adminOnly.then(agents.SetAgentStatus))

	// Doctors. Slots are cached by the doctor service, which drops them on
	// booking events, so they bypass the response cache.
	doctors := r.handlers.Doctors
	r.mux.Handle("GET /api/doctors", cachedRead.then(doctors.ListDoctors))
	r.mux.Handle("GET /api/doctors/specializations", cachedRead.then(doctors.ListSpecializations))
	r.mux.Handle("GET /api/doctors/{id}", cachedRead.then(doctors.GetDoctor))
	r.mux.Handle("GET /api/doctors/{id}/slots", authed.then(doctors.GetDoctorSlots))
	r.mux.Handle("POST /api/doctors", cachedAdmin.then(doctors.CreateDoctor))
	r.mux.Handle("PUT /api/doctors/{id}", cachedAdmin.then(doctors.UpdateDoctor))
	r.mux.Handle("PUT /api/doctors/{id}/availability", cachedAdmin.then(doctors.SetDoctorAvailability))
	r.mux.Handle("DELETE /api/doctors/{id}", cachedAdmin.then(doctors.DeactivateDoctor))

	// Appointments
	appointments := r.handlers.Appointments
	r.mux.Handle("POST /api/appointments", agentOnly.then(appointments.CreateAppointment))
	r.mux.Handle("POST /api/appointments/bulk", agentOnly.then(appointments.BulkCreateAppointments))
	r.mux.Handle("GET /api/appointments", staff.then(appointments.ListAppointments))
	r.mux.Handle("GET /api/appointments/unpaid", agentOnly.then(appointments.ListUnpaidAppointments))
	r.mux.Handle("GET /api/appointments/{id}", staff.then(appointments.GetAppointment))
	r.mux.Handle("PUT /api/appointments/{id}", agentOnly.then(appointments.UpdateAppointment))
	r.mux.Handle("POST /api/appointments/{id}/confirm", agentOnly.then(appointments.ConfirmAppointment))
	r.mux.Handle("POST /api/appointments/{id}/cancel", agentOnly.then(appointments.CancelAppointment))
	r.mux.Handle("PATCH /api/appointments/{id}/status", adminOnly.then(appointments.UpdateAppointmentStatus))

	// Payments
	payments := r.handlers.Payments
	r.mux.Handle("GET /api/payments", staff.then(payments.ListPayments))
	r.mux.Handle("GET /api/payments/summary", staff.then(payments.PaymentSummary))
	r.mux.Handle("GET /api/payments/{id}", staff.then(payments.GetPayment))

	// Reports
	reports := r.handlers.Reports
	r.mux.Handle("POST /api/reports", staff.then(reports.GenerateReport))
	r.mux.Handle("GET /api/reports", staff.then(reports.ListReports))
	r.mux.Handle("GET /api/reports/{id}", staff.then(reports.GetReport))
	r.mux.Handle("GET /api/reports/{id}/pdf", staff.then(reports.DownloadReportPDF))

	// Notifications
	notifications := r.handlers.Notifications
	r.mux.Handle("GET /api/notifications", authed.then(notifications.ListNotifications))
	r.mux.Handle("GET /api/notifications/unread-count", authed.then(notifications.UnreadCount))
	r.mux.Handle("PATCH /api/notifications/read-all", authed.then(notifications.MarkAllRead))
	r.mux.Handle("PATCH /api/notifications/{id}/read", authed.then(notifications.MarkRead))

	// Live updates
	if r.handlers.Stream != nil {
		r.mux.Handle("GET /api/stream/appointments", authed.then(r.handlers.Stream.StreamAppointments))
	}
	if r.handlers.WebSocket != nil {
		r.mux.Handle("GET /ws", authed.then(r.handlers.WebSocket.Connect))
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so error responses carry its headers too.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(r.healthChecks))
	for name, check := range r.healthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status == http.StatusOK,
		"data":    map[string]interface{}{"checks": checks},
	})
}
