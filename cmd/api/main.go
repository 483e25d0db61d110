package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/adamdavies1915/bikecountdisplay/internal/counts"
	"github.com/adamdavies1915/bikecountdisplay/internal/http/handlers"
	"github.com/adamdavies1915/bikecountdisplay/internal/http/httpapi"
	"github.com/adamdavies1915/bikecountdisplay/internal/infra"
	"github.com/adamdavies1915/bikecountdisplay/internal/metrics"
	"github.com/adamdavies1915/bikecountdisplay/internal/providers/ecovisio"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client := ecovisio.NewClient(ecovisio.Options{
		BaseURL:        cfg.EcoVisioBaseURL,
		RequestTimeout: cfg.UpstreamTimeout,
		Logger:         &logger,
	})

	app := handlers.NewApp(handlers.Deps{
		Fetcher:    client,
		Counter:    cfg.Counter,
		Aggregator: counts.New(cfg.SummaryPolicy),
		Metrics:    metrics.New(),
		Logger:     &logger,
		Location:   cfg.Location,
	})

	router := httpapi.NewRouter(app, httpapi.Options{
		StaticDir:       cfg.StaticDir,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
		TrustProxy:      cfg.TrustProxy,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("site_id", cfg.Counter.SiteID).
			Str("flow_ids", cfg.Counter.FlowIDsParam()).
			Str("policy", cfg.SummaryPolicy.String()).
			Str("static_dir", cfg.StaticDir).
			Msgf("Bike count display running on port %s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
