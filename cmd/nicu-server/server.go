package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/nicu/fluidcalc/internal/config"
	"github.com/nicu/fluidcalc/internal/domain/nicu"
	"github.com/nicu/fluidcalc/internal/platform/db"
	"github.com/nicu/fluidcalc/internal/platform/middleware"
	"github.com/nicu/fluidcalc/pkg/nutrition"
)

const version = "0.1.0"

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	ctx := context.Background()
	ref, pool, err := loadReference(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("source", cfg.ReferenceSource).Msg("failed to load reference tables")
		return err
	}
	if pool != nil {
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}
	logger.Info().
		Str("source", cfg.ReferenceSource).
		Int("tpn_solutions", len(ref.TPNCompositions)).
		Int("lipid_solutions", len(ref.LipidSolutions)).
		Int("glucose_solutions", len(ref.GlucoseSolutions)).
		Msg("reference tables loaded")

	e := newServer(cfg, logger, ref, pool)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer assembles the HTTP API. pool may be nil when the reference
// tables do not come from Postgres; /health/db is then not registered.
func newServer(cfg *config.Config, logger zerolog.Logger, ref *nutrition.ReferenceData, pool *pgxpool.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "If-None-Match", middleware.RequestIDHeader},
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/health"))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":           "ok",
			"version":          version,
			"reference_source": cfg.ReferenceSource,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	svc := nicu.NewService(nicu.NewPatientRepoMemory(), nicu.NewPlanRepoMemory(), ref, logger)
	nicu.NewHandler(svc).RegisterRoutes(apiV1)

	return e
}
