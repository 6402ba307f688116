package main

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"studioBooker/internal/calendar"
	"studioBooker/internal/clients/esign"
	"studioBooker/internal/clients/gcal"
	"studioBooker/internal/clients/gemini"
	"studioBooker/internal/config"
	"studioBooker/internal/http-server/handlers/booking/checkAvailability"
	"studioBooker/internal/http-server/handlers/booking/checkConflicts"
	"studioBooker/internal/http-server/handlers/booking/createBooking"
	"studioBooker/internal/http-server/handlers/booking/deleteBooking"
	"studioBooker/internal/http-server/handlers/booking/getBooking"
	"studioBooker/internal/http-server/handlers/booking/listBookings"
	"studioBooker/internal/http-server/handlers/booking/updateBooking"
	"studioBooker/internal/http-server/handlers/booking/updateStatus"
	"studioBooker/internal/http-server/handlers/calendar/getCalendar"
	"studioBooker/internal/http-server/handlers/equipment/listEquipment"
	"studioBooker/internal/http-server/handlers/webhook/signatureWebhook"
	"studioBooker/internal/http-server/middleware/mwlogger"
	"studioBooker/internal/lib/logger/handlers/slogpretty"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/notify"
	"studioBooker/internal/scheduling/reservation"
	"studioBooker/internal/scheduling/status"
	"studioBooker/internal/services/booking"
	"studioBooker/internal/services/signature"
	"studioBooker/internal/storage/postgres"
	"studioBooker/internal/storage/redis"
	"syscall"
	"time"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting studio booker", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	defer stop()

	loc, err := cfg.Studio.Location()
	if err != nil {
		log.Error("invalid studio timezone", slog.String("timezone", cfg.Studio.Timezone), sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.InitDB(&cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err = storage.Migrate(ctx); err != nil {
			log.Error("failed to apply schema", sl.Err(err))
			os.Exit(1)
		}
		log.Info("schema applied")
	}

	notifier, closeNotifier := setupNotifier(log, cfg.RabbitMQ)
	defer closeNotifier()

	advisor, closeAdvisor := setupAdvisor(ctx, log, cfg.Advisor)
	defer closeAdvisor()

	var provider signature.Provider
	if cfg.Signature.ProviderURL != "" {
		provider = esign.New(cfg.Signature.ProviderURL, cfg.Signature.APIKey, cfg.Signature.TemplateID, cfg.Signature.RequestTimeout)
	} else {
		log.Warn("e-signature provider is not configured, bookings will stay pending until confirmed by staff")
	}

	gate := signature.NewGate(log, storage, provider, notifier, signature.Options{
		WebhookSecret:  cfg.Signature.WebhookSecret,
		AllowUnsigned:  cfg.Signature.AllowUnsigned,
		RequestTimeout: cfg.Signature.RequestTimeout,
		ReconcileAfter: cfg.Signature.ReconcileAfter,
	})

	if cfg.Redis.Address != "" {
		deduper, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, webhook deliveries will not be deduplicated", sl.Err(err))
		} else {
			gate.WithClaimer(deduper)
			defer func() {
				if err := deduper.Close(); err != nil {
					log.Error("failed to close redis connection", sl.Err(err))
				}
			}()
		}
	}

	resolver := status.NewResolver(loc, time.Now)
	equipment := reservation.NewManager(log, storage, advisor, cfg.Advisor.Timeout)
	bookings := booking.NewService(log, storage, equipment, resolver, gate)

	aggregator := calendar.NewAggregator(log, cfg.Calendar.SourceTimeout,
		calendar.NewStudioSource(storage, resolver),
		calendar.NewProjectSource(storage),
		calendar.NewTaskSource(storage, cfg.Calendar.TaskAssignee),
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Route("/bookings", func(r chi.Router) {
		r.Get("/", listBookings.New(log, bookings))
		r.Post("/", createBooking.New(log, bookings))
		r.Post("/conflicts", checkConflicts.New(log, bookings))
		r.Post("/availability", checkAvailability.New(log, bookings))
		r.Get("/{id}", getBooking.New(log, bookings))
		r.Put("/{id}", updateBooking.New(log, bookings))
		r.Delete("/{id}", deleteBooking.New(log, bookings))
		r.Patch("/{id}/status", updateStatus.New(log, bookings))
	})
	router.Get("/equipment", listEquipment.New(log, bookings))
	router.Get("/calendar", getCalendar.New(log, aggregator, getCalendar.Options{
		External: func(ctx context.Context, token string) (calendar.Source, error) {
			src, err := gcal.New(ctx, token, loc)
			if err != nil {
				return nil, err
			}
			return calendar.TimeBoxed(src, cfg.Calendar.ExternalTimeout), nil
		},
		DayCap: cfg.Calendar.DayCap,
		Now:    func() time.Time { return time.Now().In(loc) },
	}))
	router.Post("/webhooks/signature", signatureWebhook.New(log, gate))

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if cfg.Signature.ReconcileEvery <= 0 || provider == nil {
			return
		}

		ticker := time.NewTicker(cfg.Signature.ReconcileEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := gate.Reconcile(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("failed to reconcile signature requests", sl.Err(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("application stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	gate.Wait()

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}

	log.Info("postgres connection closed")
}

// setupNotifier publishes to RabbitMQ when configured and falls back to the
// log otherwise.
func setupNotifier(log *slog.Logger, cfg config.RabbitMQ) (notify.Notifier, func()) {
	if cfg.URL == "" {
		return notify.NewLogNotifier(log), func() {}
	}

	pub, err := notify.NewPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		log.Warn("rabbitmq unavailable, notifications go to the log", sl.Err(err))
		return notify.NewLogNotifier(log), func() {}
	}

	return pub, func() {
		if err := pub.Close(); err != nil {
			log.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
}

func setupAdvisor(ctx context.Context, log *slog.Logger, cfg config.Advisor) (reservation.Advisor, func()) {
	if cfg.GeminiAPIKey == "" {
		log.Info("equipment advisor disabled")
		return nil, func() {}
	}

	adv, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		log.Warn("failed to init equipment advisor", sl.Err(err))
		return nil, func() {}
	}

	return adv, func() {
		if err := adv.Close(); err != nil {
			log.Error("failed to close advisor client", sl.Err(err))
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
