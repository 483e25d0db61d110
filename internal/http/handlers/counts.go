package handlers

import (
	"net/http"
	"time"

	"github.com/adamdavies1915/bikecountdisplay/internal/middleware"
)

// FetchFailedMessage is the only error body clients see for upstream failures.
const FetchFailedMessage = "Failed to fetch bike counts"

// Counts fetches the configured counter series and returns its summary.
func (a *App) Counts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	raw, err := a.fetcher.FetchSeries(r.Context(), a.counter)
	a.metrics.ObserveUpstream(err, time.Since(start))
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("site_id", a.counter.SiteID).
			Msg("error fetching counts")
		a.error(w, http.StatusInternalServerError, FetchFailedMessage)
		return
	}

	summary := a.aggregator.Summarize(raw, a.now().In(a.location))
	a.metrics.AddSkipped(summary.SkippedEntries)
	if summary.SkippedEntries > 0 {
		a.logger.Debug().
			Int("skipped", summary.SkippedEntries).
			Str("site_id", a.counter.SiteID).
			Msg("skipped malformed series entries")
	}

	w.Header().Set("Cache-Control", "no-store")
	a.json(w, http.StatusOK, summary.Payload())
}
