package handlers

import (
	"net/http"

	"github.com/adamdavies1915/bikecountdisplay/internal/metrics"
)

// MetricsText serves the service counters in Prometheus text format.
func (a *App) MetricsText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", metrics.ContentType)
	w.WriteHeader(http.StatusOK)
	if err := a.metrics.WriteText(w); err != nil {
		a.logger.Warn().Err(err).Msg("failed to encode metrics")
	}
}
