package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/drawpile/listserver-go/internal/classifier"
	"github.com/drawpile/listserver-go/internal/config"
	"github.com/drawpile/listserver-go/internal/database"
	"github.com/drawpile/listserver-go/internal/handler"
	"github.com/drawpile/listserver-go/internal/jobs"
	"github.com/drawpile/listserver-go/internal/middleware"
	"github.com/drawpile/listserver-go/internal/redis"
	"github.com/drawpile/listserver-go/internal/repository"
	"github.com/drawpile/listserver-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	cls, err := classifier.Parse(cfg.Markers())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid NSFM_WORDS")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if cfg.AutoMigrate {
		if err := db.Migrate(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		log.Info().Msg("schema applied")
	}

	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
		limiter = service.NewRateLimiter(redisClient)
	} else {
		limiter = middleware.NewMemoryLimiter()
	}

	announcementRepo := repository.NewAnnouncementRepository(db.DB)

	directoryService := service.NewDirectoryService(
		db,
		announcementRepo,
		service.NewValidator(cfg.AllowPrivateIP),
		cls,
		cfg.SessionTTL(),
		cfg.RateLimit,
	)

	clientIPMiddleware := middleware.NewClientIPMiddleware(cfg.TrustedProxyHeader)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	throttleMiddleware := middleware.NewThrottleMiddleware(
		limiter, cfg.RequestRateLimitPerMin, config.RequestRateLimitWindow, "write",
	)

	directoryHandler := handler.NewDirectoryHandler(directoryService, handler.ListingInfo{
		Name:        cfg.ListingName,
		Description: cfg.ListingDescription,
		Favicon:     cfg.ListingFavicon,
	})
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(clientIPMiddleware.Handler)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(chimiddleware.GetHead)
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", healthHandler.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.Mount("/", directoryHandler.Routes(throttleMiddleware.Handler))
	})

	if cfg.PurgeAfterHours > 0 {
		purgeJob := jobs.NewPurgeJob(announcementRepo, cfg.PurgeAfter(), config.PurgeJobInterval)
		purgeJob.Start()
		defer purgeJob.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Dur("sessionTimeout", cfg.SessionTTL()).
			Int("rateLimit", cfg.RateLimit).
			Int("markers", cls.Len()).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
