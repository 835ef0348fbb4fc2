package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/ecavus/wedding-rsvp/internal/http/handlers"
	mw "github.com/ecavus/wedding-rsvp/internal/http/middleware"
	"github.com/ecavus/wedding-rsvp/internal/platform/mailer"
	"github.com/ecavus/wedding-rsvp/internal/repo/postgres"
	"github.com/ecavus/wedding-rsvp/internal/service"
	"github.com/ecavus/wedding-rsvp/pkg/config"
	"github.com/ecavus/wedding-rsvp/pkg/database"
	"github.com/ecavus/wedding-rsvp/pkg/events"
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.Database.URL); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		publisher = bus
	}

	var opts []service.Option
	if cfg.Email.NotifyEmail != "" {
		opts = append(opts, service.WithNotifications(
			newMailer(cfg), cfg.Email.NotifyEmail, cfg.Email.NotifyName,
		))
	}

	store := postgres.NewStore(pool)
	svc := service.New(store, publisher, opts...)

	submitLimit := mw.PerMinute(pool, 5).Middleware()
	lookupLimit := mw.PerMinute(pool, 10).Middleware()
	adminGuard := mw.RequireAdmin(cfg.Admin.JWTSecret)

	rsvpHandler := handlers.NewRSVPHandler(svc, submitLimit, lookupLimit)
	detailsHandler := handlers.NewGuestDetailsHandler(svc, lookupLimit, adminGuard)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "Panic recovered", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	})
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost", "http://localhost:80", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	r.Mount("/rsvp", rsvpHandler.Routes())
	r.Mount("/guest-details", detailsHandler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down RSVP service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("RSVP service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting RSVP service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("RSVP service error", "error", err)
		os.Exit(1)
	}
}

func newMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailer(cfg.Email.MailerSendKey, "Wedding RSVP", cfg.Email.SMTPFrom)
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	default:
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS,
		)
	}
}
