package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/docconnect/platform/internal/api/router"
	"github.com/docconnect/platform/internal/appointments"
	"github.com/docconnect/platform/internal/chatbot"
	appconfig "github.com/docconnect/platform/internal/config"
	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/internal/notifications"
	"github.com/docconnect/platform/internal/observability/metrics"
	"github.com/docconnect/platform/internal/payments"
	"github.com/docconnect/platform/internal/realtime"
	"github.com/docconnect/platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting docconnect API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Stores
	doctorStore := doctors.NewStore(pool)
	directory := doctors.NewCachedDirectory(doctorStore, redisClient, cfg.DoctorCacheTTL, logger.Component("doctors"))
	inbox := notifications.NewStore(pool)
	apptRepo := appointments.NewStore(pool)

	// Realtime + metrics
	dispatcher := realtime.NewDispatcher(logger.Component("realtime"))
	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	// Symptom classifier is optional; without an API key the chatbot runs
	// on the rule table alone.
	var classifier chatbot.Classifier
	if cfg.GeminiAPIKey != "" {
		gemini, err := chatbot.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini classifier", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		classifier = gemini
	} else {
		logger.Warn("GEMINI_API_KEY unset, symptom triage runs rules-only")
	}

	// Services
	apptService := appointments.NewService(appointments.ServiceOptions{
		Repo:               apptRepo,
		Directory:          directory,
		Notifier:           inbox,
		Dispatcher:         dispatcher,
		Metrics:            bookingMetrics,
		Logger:             logger.Component("appointments"),
		DefaultTokenAmount: cfg.DefaultTokenAmount,
	})
	triageService := chatbot.NewService(classifier, directory, bookingMetrics, logger.Component("chatbot"), cfg.ClassifierTimeout)

	// Router
	r := router.New(&router.Config{
		Logger:               logger,
		DoctorsHandler:       doctors.NewHandler(directory, logger.Component("doctors")),
		AppointmentsHandler:  appointments.NewHandler(apptService, directory, logger.Component("appointments")),
		NotificationsHandler: notifications.NewHandler(inbox, directory, logger.Component("notifications")),
		ChatbotHandler:       chatbot.NewHandler(triageService, logger.Component("chatbot")),
		PaymentsHandler:      payments.NewHandler(apptService, logger.Component("payments")),
		Dispatcher:           dispatcher,
		MetricsHandler:       promhttp.Handler(),
		SessionJWTSecret:     cfg.SessionJWTSecret,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
