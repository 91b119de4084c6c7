package http

import (
	"net/http"

	"medical-scheduling/internal/delivery/http/handler"
	"medical-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	physicianHandler   *handler.PhysicianHandler
	feedbackHandler    *handler.FeedbackHandler
	auditLogHandler    *handler.AuditLogHandler
	healthHandler      *handler.HealthHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	loggingMiddleware  *middleware.LoggingMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	physicianHandler *handler.PhysicianHandler,
	feedbackHandler *handler.FeedbackHandler,
	auditLogHandler *handler.AuditLogHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		appointmentHandler: appointmentHandler,
		physicianHandler:   physicianHandler,
		feedbackHandler:    feedbackHandler,
		auditLogHandler:    auditLogHandler,
		healthHandler:      healthHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		loggingMiddleware:  loggingMiddleware,
	}
}

// Setup registers every route. CORS wraps the whole mux so preflight
// requests that match no route still get answered.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Check).Methods(http.MethodGet)

	// Everything below requires a token
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Auth routes
	protected.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", r.authHandler.Session).Methods(http.MethodGet)

	// Physician directory (any authenticated user)
	protected.HandleFunc("/physicians", r.physicianHandler.SearchPhysicians).Methods(http.MethodGet)
	protected.HandleFunc("/physicians/search/geo", r.physicianHandler.SearchNearby).Methods(http.MethodGet)
	protected.HandleFunc("/physicians/{id}", r.physicianHandler.GetPhysician).Methods(http.MethodGet)
	protected.HandleFunc("/physicians/{id}/availability", r.physicianHandler.GetAvailability).Methods(http.MethodGet)
	protected.HandleFunc("/physicians/{id}/slots", r.appointmentHandler.CheckSlot).Methods(http.MethodGet)

	// Physician self-service
	physician := protected.PathPrefix("/physician").Subrouter()
	physician.Use(middleware.RequirePhysician)
	physician.HandleFunc("/profile", r.physicianHandler.GetMyProfile).Methods(http.MethodGet)
	physician.HandleFunc("/profile", r.physicianHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Appointments
	appointments := protected.PathPrefix("/appointments").Subrouter()
	appointments.Handle("", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.BookAppointment))).Methods(http.MethodPost)
	appointments.Handle("/me", middleware.RequireParticipant(http.HandlerFunc(r.appointmentHandler.GetMyAppointments))).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	appointments.Handle("/{id}", middleware.RequireParticipant(http.HandlerFunc(r.appointmentHandler.CancelAppointment))).Methods(http.MethodDelete)
	appointments.Handle("/{id}/reschedule", middleware.RequireParticipant(http.HandlerFunc(r.appointmentHandler.RescheduleAppointment))).Methods(http.MethodPatch)
	appointments.Handle("/{id}/complete", middleware.RequirePhysician(http.HandlerFunc(r.appointmentHandler.CompleteAppointment))).Methods(http.MethodPost)
	appointments.Handle("/{id}/feedback", middleware.RequirePatient(http.HandlerFunc(r.feedbackHandler.SubmitFeedback))).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/feedback", r.feedbackHandler.GetFeedback).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/physicians/{id}/verify", r.physicianHandler.VerifyPhysician).Methods(http.MethodPost)

	r.router.Use(r.loggingMiddleware.Handle)

	return r.corsMiddleware.Handle(r.router)
}
