package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/adamdavies1915/bikecountdisplay/internal/metrics"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "propagates caller id", incoming: "abc-123", keep: true},
		{name: "generates when missing", incoming: ""},
		{name: "replaces id with spaces", incoming: "two words"},
		{name: "replaces oversized id", incoming: strings.Repeat("x", maxRequestIDLen+1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set("X-Request-ID", tc.incoming)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if seen == "" {
				t.Fatalf("request id missing from context")
			}
			if got := rr.Header().Get("X-Request-ID"); got != seen {
				t.Fatalf("header = %q, context = %q", got, seen)
			}
			if tc.keep != (seen == tc.incoming) {
				t.Fatalf("id = %q, incoming %q, keep %v", seen, tc.incoming, tc.keep)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://display.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/counts", nil)
		req.Header.Set("Origin", "https://display.example.com")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://display.example.com" {
			t.Fatalf("allow origin = %q", got)
		}
		if rr.Code != http.StatusOK {
			t.Fatalf("code = %d", rr.Code)
		}
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/counts", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow origin = %q, want empty", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/counts", nil)
		req.Header.Set("Origin", "https://display.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("code = %d, want 204", rr.Code)
		}
		if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET,OPTIONS" {
			t.Fatalf("allow methods = %q", got)
		}
	})

	passThrough := []struct {
		name          string
		origin        string
		requestMethod string
	}{
		{name: "options without origin", requestMethod: http.MethodGet},
		{name: "options from unknown origin", origin: "https://evil.example.com", requestMethod: http.MethodGet},
		{name: "options without request method", origin: "https://display.example.com"},
	}
	for _, tc := range passThrough {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/counts", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tc.requestMethod)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				t.Fatalf("code = %d, want request passed to next handler", rr.Code)
			}
		})
	}
}

func TestLoggerWritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/counts", nil)
	req.Header.Set("X-Request-ID", "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["status"] != float64(http.StatusTeapot) {
		t.Fatalf("status = %v", line["status"])
	}
	if line["bytes"] != float64(len("short and stout")) {
		t.Fatalf("bytes = %v", line["bytes"])
	}
	if line["request_id"] != "req-1" || line["path"] != "/api/counts" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := metrics.New()
	r := chi.NewRouter()
	r.Use(Metrics(reg))
	r.Get("/api/counts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/counts", nil))

	var buf bytes.Buffer
	if err := reg.WriteText(&buf); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	if !strings.Contains(buf.String(), `bikecount_http_requests_total{code="500",route="/api/counts"} 1`) {
		t.Fatalf("missing route counter:\n%s", buf.String())
	}
}
