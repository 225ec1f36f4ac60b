package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"islebook-backend/internal/accounts"
	"islebook-backend/internal/auth"
	"islebook-backend/internal/booking"
	"islebook-backend/internal/cache"
	"islebook-backend/internal/catalog"
	"islebook-backend/internal/config"
	"islebook-backend/internal/db"
	"islebook-backend/internal/favorites"
	"islebook-backend/internal/messages"
	"islebook-backend/internal/middleware"
	"islebook-backend/internal/notifications"
	"islebook-backend/internal/payments"
	"islebook-backend/internal/schedule"
	"islebook-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	jwtManager := &auth.Manager{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
		Issuer:     "islebook-backend",
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	smsClient := notifications.NewSMSClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	if smsClient == nil {
		logger.Info("twilio sms disabled")
	} else {
		logger.Info("twilio sms enabled", slog.String("from", cfg.TwilioFromNumber))
	}

	provider := payments.NewClient(cfg.PaymentsBaseURL)
	if provider == nil {
		logger.Warn("payments provider not configured; bookings will be rejected")
	}

	val := validation.New()
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	window := schedule.Window{Open: cfg.BookingOpenHour, Close: cfg.BookingCloseHour}
	lead := time.Duration(cfg.LeadTimeHours) * time.Hour

	accountsRepo := accounts.NewRepository(cols.Users)
	accountsService := accounts.NewService(accountsRepo, cfg.Timezone)
	accountsHandler := accounts.NewHandler(accountsService, jwtManager, val, logger, cfg.CookieSecure)

	catalogRepo := catalog.NewRepository(cols.Activities)
	catalogService := catalog.NewService(catalogRepo, cfg.Timezone)
	catalogHandler := catalog.NewHandler(catalogService, accountsService, val, logger, cacheStore, cacheTTL)

	bookingRepo := booking.NewRepository(cols.Appointments)
	bookingService := booking.NewService(bookingRepo, catalogRepo, provider, cfg.Timezone, window, lead, cfg.Currency)
	bookingHandler := booking.NewHandler(bookingService, mailer, smsClient, val, logger, cacheStore, cacheTTL, cfg.Timezone.String())

	favoritesRepo := favorites.NewRepository(cols.Favorites)
	favoritesService := favorites.NewService(favoritesRepo)
	favoritesHandler := favorites.NewHandler(favoritesService, val, logger)

	messagesRepo := messages.NewRepository(cols.Messages)
	messagesService := messages.NewService(messagesRepo, catalogRepo)
	messagesHandler := messages.NewHandler(messagesService, val, logger)

	paymentsHandler := payments.NewHandler(provider, catalogService, cfg.Currency, val, logger)

	scheduler := cron.New()
	expiry := booking.NewExpiryJob(bookingRepo, time.Duration(cfg.PendingTTLMinutes)*time.Minute, cacheStore, logger)
	if _, err := expiry.Schedule(scheduler, cfg.ExpiryCronSpec); err != nil {
		logger.Error("expiry job schedule failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	bookingsLimiter := middleware.NewRateLimiter(cfg.RateLimitBookings, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	messagesLimiter := middleware.NewRateLimiter(cfg.RateLimitMessages, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/register", accountsHandler.Register)
			a.Post("/login", accountsHandler.Login)
			a.Post("/refresh", accountsHandler.Refresh)
			a.Post("/logout", accountsHandler.Logout)
			a.With(middleware.RequireAuth(jwtManager)).Get("/me", accountsHandler.Me)
		})

		api.Get("/activities", catalogHandler.List)
		api.Get("/activities/{id}", catalogHandler.GetByID)
		api.Get("/activities/{id}/availability", bookingHandler.Availability)
		api.Get("/activities/{id}/messages", messagesHandler.List)
		api.Get("/activities/{id}/messages/stream", messagesHandler.Stream)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(jwtManager))

			protected.Post("/activities", catalogHandler.Create)
			protected.Put("/activities/{id}", catalogHandler.Update)
			protected.Delete("/activities/{id}", catalogHandler.Delete)

			protected.With(messagesLimiter.Middleware).Post("/activities/{id}/messages", messagesHandler.Post)

			protected.With(bookingsLimiter.Middleware).Post("/bookings", bookingHandler.Create)
			protected.Get("/bookings", bookingHandler.ListMine)
			protected.Post("/bookings/{id}/confirm", bookingHandler.Confirm)
			protected.Post("/bookings/{id}/cancel", bookingHandler.Cancel)
			protected.Post("/bookings/{id}/rating", bookingHandler.SubmitRating)

			protected.Get("/favorites", favoritesHandler.List)
			protected.Post("/favorites/toggle", favoritesHandler.Toggle)

			protected.Post("/payments/intent", paymentsHandler.CreateIntent)
			protected.Get("/payments/ephemeral-secret", paymentsHandler.EphemeralSecret)
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
