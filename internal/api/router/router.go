package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/docconnect/platform/internal/appointments"
	"github.com/docconnect/platform/internal/chatbot"
	"github.com/docconnect/platform/internal/doctors"
	httpmiddleware "github.com/docconnect/platform/internal/http/middleware"
	"github.com/docconnect/platform/internal/identity"
	"github.com/docconnect/platform/internal/notifications"
	"github.com/docconnect/platform/internal/payments"
	"github.com/docconnect/platform/internal/realtime"
	"github.com/docconnect/platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	DoctorsHandler       *doctors.Handler
	AppointmentsHandler  *appointments.Handler
	NotificationsHandler *notifications.Handler
	ChatbotHandler       *chatbot.Handler
	PaymentsHandler      *payments.Handler
	Dispatcher           *realtime.Dispatcher
	MetricsHandler       http.Handler
	SessionJWTSecret     string
	CORSAllowedOrigins   []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.DoctorsHandler != nil {
			cfg.DoctorsHandler.RegisterRoutes(public)
		}
		if cfg.ChatbotHandler != nil {
			cfg.ChatbotHandler.RegisterRoutes(public)
		}
		if cfg.Dispatcher != nil {
			public.Get("/ws", cfg.Dispatcher.HandleWebSocket)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Patient endpoints
	r.Group(func(patient chi.Router) {
		patient.Use(httpmiddleware.SessionAuth(cfg.SessionJWTSecret))
		if cfg.AppointmentsHandler != nil {
			cfg.AppointmentsHandler.RegisterPatientRoutes(patient)
		}
		if cfg.PaymentsHandler != nil {
			cfg.PaymentsHandler.RegisterRoutes(patient)
		}
	})

	// Doctor endpoints
	r.Group(func(doctor chi.Router) {
		doctor.Use(httpmiddleware.SessionAuth(cfg.SessionJWTSecret))
		doctor.Use(httpmiddleware.RequireRole(identity.RoleDoctor))
		if cfg.AppointmentsHandler != nil {
			cfg.AppointmentsHandler.RegisterDoctorRoutes(doctor)
		}
		if cfg.NotificationsHandler != nil {
			cfg.NotificationsHandler.RegisterRoutes(doctor)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
