package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adamdavies1915/bikecountdisplay/internal/metrics"
)

// Metrics counts requests per chi route pattern and status code.
func Metrics(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			reg.ObserveHTTP(route, rw.status)
		})
	}
}
