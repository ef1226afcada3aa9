package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"productstudio/internal/http/handlers"
	httpapi "productstudio/internal/http/httpapi"
	"productstudio/internal/imagegen"
	"productstudio/internal/infra"
	"productstudio/internal/infra/credentials"
	"productstudio/internal/infra/geoip"
	"productstudio/internal/metrics"
	"productstudio/internal/middleware"
	"productstudio/internal/sharing"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Saved credential lives in Postgres when configured, in memory otherwise.
	var settings credentials.Setter = credentials.NewMemoryStore()
	if cfg.HasDatabase() {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()

		store := credentials.NewStore(infra.NewSQLRunner(dbpool, logger))
		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := store.EnsureSchema(schemaCtx); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("failed to prepare credential table")
		}
		cancel()
		settings = store
		logger.Info().Msg("credential settings backed by postgres")
	} else {
		logger.Warn().Msg("DATABASE_URL not set; saved credential will not survive a restart")
	}

	var lookup middleware.CountryLookup
	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable")
	} else if geo != nil {
		defer geo.Close()
		lookup = geo.Lookup()
	}

	generator := imagegen.NewClient(imagegen.Options{
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIImageModel,
		Timeout: cfg.GenerationTimeout,
		Logger:  &logger,
	})
	uploader := sharing.NewClient(sharing.Options{
		Endpoint: cfg.ShareUploadURL,
		Timeout:  cfg.UploadTimeout,
		Logger:   &logger,
	})

	app := handlers.NewApp(cfg, logger, generator, uploader, settings, metrics.New())
	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("env", cfg.AppEnv).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// In-flight generations may take minutes; give them the write timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPWriteTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
