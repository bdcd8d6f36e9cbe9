package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/ai"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/cache"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/config"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/db"
	httpapi "github.com/freehazamanet-dot/dental-marketing-analyzer/internal/http"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/places"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "dental-analyzer").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var adapter ai.Adapter
	if cfg.OpenRouterAPIKey == "" {
		adapter = ai.MockAdapter{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock AI adapter")
	} else {
		completions, err := cache.New(cfg.CacheMaxSizeMB, cfg.CacheTTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init completion cache")
		}
		adapter = ai.OpenRouterAdapter{
			BaseURL:   cfg.OpenRouterURL,
			APIKey:    cfg.OpenRouterAPIKey,
			Model:     cfg.AIModel,
			MaxTokens: cfg.AIMaxTokens,
			Timeout:   cfg.AITimeout,
			Limiter:   rate.NewLimiter(rate.Limit(float64(cfg.AIRequestsPerMin)/60.0), 1),
			Cache:     completions,
		}
	}

	var source places.Source
	if cfg.PlacesAPIKey == "" {
		source = places.MockSource{}
		logger.Info().Msg("using mock place source")
	} else {
		source = &places.GoogleSource{APIKey: cfg.PlacesAPIKey}
	}

	analyzer := &service.AnalyzerService{Store: store, AI: adapter, Logger: logger}
	router := httpapi.Router(cfg, store, analyzer, source, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
