package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quickfetch/quickfetch/internal/certs"
	"github.com/quickfetch/quickfetch/internal/config"
	"github.com/quickfetch/quickfetch/internal/database"
	"github.com/quickfetch/quickfetch/internal/handler"
	"github.com/quickfetch/quickfetch/internal/jobs"
	"github.com/quickfetch/quickfetch/internal/middleware"
	"github.com/quickfetch/quickfetch/internal/pin"
	"github.com/quickfetch/quickfetch/internal/repository"
	"github.com/quickfetch/quickfetch/internal/service"
	"github.com/quickfetch/quickfetch/internal/session"
	"github.com/quickfetch/quickfetch/web"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Str("path", cfg.DatabasePath()).Msg("database ready")

	// TLS keeps submitted content off the air in plaintext. When cert
	// generation fails the server still comes up over plain HTTP so the
	// tool remains usable.
	scheme := "http"
	var certFile, keyFile string
	if cfg.TLS {
		certFile, keyFile, err = certs.Ensure(cfg.CertDir())
		if err != nil {
			log.Warn().Err(err).Msg("certificate setup failed, falling back to HTTP")
		} else {
			scheme = "https"
		}
	}

	fieldRepo := repository.NewFieldRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)

	store := session.NewStore()
	pairingService := service.NewPairingService(store, fieldRepo, scheme, cfg.Port)
	fieldService := service.NewFieldService(fieldRepo, settingsRepo)
	pinService := service.NewPinService(settingsRepo)
	machine := pin.NewMachine(pinService, func(ctx context.Context, fieldID string, action pin.Action) error {
		return fieldService.ApplyProtection(ctx, fieldID, action == pin.ActionProtect)
	})

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.MaxSubmitBodySize)

	mobileHandler := handler.NewMobileHandler(pairingService)
	desktopHandler := handler.NewDesktopHandler(pairingService, fieldService, pinService, machine)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Get("/", desktopHandler.Index)
	mobileHandler.Register(r)
	r.Mount("/api", desktopHandler.Routes())
	r.Handle("/static/*", web.Static())

	var expiryJob *jobs.ExpiryJob
	if ttl := cfg.SessionTTL(); ttl > 0 {
		expiryJob = jobs.NewExpiryJob(store, ttl, config.ExpiryJobInterval)
		expiryJob.Start()
		defer expiryJob.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("scheme", scheme).Msg("starting server")
		var err error
		if scheme == "https" {
			err = server.ListenAndServeTLS(certFile, keyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	pairingService.Cancel()

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
