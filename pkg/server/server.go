package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/de-tools/alert-atlas/pkg/handlers/analytics"
	alertatlasmiddleware "github.com/de-tools/alert-atlas/pkg/server/middleware"
	"github.com/de-tools/alert-atlas/pkg/services/analytics"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Analytics      analytics.Controller
	MetricsHandler http.Handler
	Observer       alertatlasmiddleware.RequestObserver
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	handler := handlers.NewHandler(config.Dependencies.Analytics)

	router := chi.NewRouter()

	router.Use(alertatlasmiddleware.Logger(&logger))
	if config.Dependencies.Observer != nil {
		router.Use(alertatlasmiddleware.Metrics(config.Dependencies.Observer))
	}
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/forecast", handler.GetForecast)
		r.Get("/migration/alerts", handler.GetMigrationAlerts)
		r.Get("/{view}", handler.GetView)
		r.Get("/{view}/export", handler.ExportView)
		r.Post("/refresh", handler.Refresh)
	})
	router.Get("/health", handler.Health)
	if config.Dependencies.MetricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", config.Dependencies.MetricsHandler)
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// Router exposes the configured mux, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
