package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/adamdavies1915/bikecountdisplay/internal/counts"
	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
	"github.com/adamdavies1915/bikecountdisplay/internal/infra"
	"github.com/adamdavies1915/bikecountdisplay/internal/metrics"
)

// SeriesFetcher retrieves the raw series for a counter.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, counter domain.CounterConfig) (any, error)
}

// Deps are the collaborators of App. Only Fetcher is required.
type Deps struct {
	Fetcher    SeriesFetcher
	Counter    domain.CounterConfig
	Aggregator counts.Aggregator
	Metrics    *metrics.Registry
	Logger     *infra.Logger
	Location   *time.Location
	Now        func() time.Time
}

// App holds the read-only state shared by every request.
type App struct {
	fetcher    SeriesFetcher
	counter    domain.CounterConfig
	aggregator counts.Aggregator
	metrics    *metrics.Registry
	logger     *infra.Logger
	location   *time.Location
	now        func() time.Time
}

func NewApp(deps Deps) *App {
	app := &App{
		fetcher:    deps.Fetcher,
		counter:    deps.Counter,
		aggregator: deps.Aggregator,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		location:   deps.Location,
		now:        deps.Now,
	}
	if app.metrics == nil {
		app.metrics = metrics.New()
	}
	if app.logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		app.logger = &l
	}
	if app.location == nil {
		app.location = time.Local
	}
	if app.now == nil {
		app.now = time.Now
	}
	return app
}

// Metrics returns the registry the app reports into.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}
