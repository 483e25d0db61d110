package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adamdavies1915/bikecountdisplay/internal/http/handlers"
	"github.com/adamdavies1915/bikecountdisplay/internal/infra"
	mw "github.com/adamdavies1915/bikecountdisplay/internal/middleware"
)

// Options configures the router surface.
type Options struct {
	StaticDir       string
	AllowedOrigins  []string
	RateLimitPerMin int
	Logger          infra.Logger
	// TrustProxy resolves the client from the rightmost X-Forwarded-For hop.
	TrustProxy bool
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	if opts.TrustProxy {
		r.Use(mw.TrustedProxyIP)
	}
	r.Use(
		mw.RequestID,
		middleware.Recoverer,
		mw.Logger(opts.Logger),
		mw.Metrics(app.Metrics()),
		mw.CORS(opts.AllowedOrigins),
	)

	// Health
	r.Get("/health", app.Health)
	r.Get("/v1/healthz", app.Health)

	r.Get("/metrics", app.MetricsText)
	r.Get(handlers.OpenAPIPath, app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Get("/counts", app.Counts)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not found"}` + "\n"))
		})
	})

	static := handlers.Static(opts.StaticDir)
	r.Get("/*", static.ServeHTTP)
	r.Head("/*", static.ServeHTTP)

	return r
}
