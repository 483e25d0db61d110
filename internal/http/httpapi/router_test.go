package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
	"github.com/adamdavies1915/bikecountdisplay/internal/http/handlers"
)

type fixedFetcher struct {
	raw any
	err error
}

func (f fixedFetcher) FetchSeries(context.Context, domain.CounterConfig) (any, error) {
	return f.raw, f.err
}

func newTestServer(t *testing.T, fetcher handlers.SeriesFetcher, rate int) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<title>Bike counts</title>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	app := handlers.NewApp(handlers.Deps{
		Fetcher:  fetcher,
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC) },
	})
	router := NewRouter(app, Options{
		StaticDir:       dir,
		AllowedOrigins:  []string{"https://display.example.com"},
		RateLimitPerMin: rate,
		Logger:          zerolog.New(io.Discard),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestRouterServesCounts(t *testing.T) {
	raw := []any{[]any{"01/01/2024", "5"}, []any{"01/02/2024", "7"}, []any{"01/03/2024", "3"}}
	srv := newTestServer(t, fixedFetcher{raw: raw}, 0)

	resp, body := get(t, srv.URL+"/api/counts")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
	var payload struct {
		Yesterday  int `json:"yesterday"`
		YearToDate int `json:"yearToDate"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Yesterday != 7 || payload.YearToDate != 12 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRouterFetchFailure(t *testing.T) {
	srv := newTestServer(t, fixedFetcher{err: domain.ErrUpstreamParse}, 0)

	resp, body := get(t, srv.URL+"/api/counts")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.TrimSpace(body) != `{"error":"Failed to fetch bike counts"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestRouterSurface(t *testing.T) {
	srv := newTestServer(t, fixedFetcher{raw: []any{}}, 0)

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/v1/healthz", http.StatusOK, `"status":"ok"`},
		{"/", http.StatusOK, "Bike counts"},
		{"/index.html", http.StatusMovedPermanently, ""},
		{"/missing.css", http.StatusNotFound, ""},
		{"/api/unknown", http.StatusNotFound, `"error":"Not found"`},
		{"/v1/openapi.json", http.StatusOK, `"/api/counts"`},
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := client.Get(srv.URL + tc.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tc.path, err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tc.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantCode)
			}
			if tc.contains != "" && !strings.Contains(string(body), tc.contains) {
				t.Fatalf("body %q missing %q", body, tc.contains)
			}
		})
	}
}

func TestRouterMetricsAfterTraffic(t *testing.T) {
	srv := newTestServer(t, fixedFetcher{raw: []any{}}, 0)
	get(t, srv.URL+"/api/counts")

	resp, body := get(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}
	for _, want := range []string{
		`bikecount_upstream_requests_total{result="ok"} 1`,
		`bikecount_http_requests_total{code="200",route="/api/counts"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}

func TestRouterRateLimitsAPI(t *testing.T) {
	srv := newTestServer(t, fixedFetcher{raw: []any{}}, 1)

	first, _ := get(t, srv.URL+"/api/counts")
	second, _ := get(t, srv.URL+"/api/counts")
	health, _ := get(t, srv.URL+"/health")

	if first.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d", first.StatusCode)
	}
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.StatusCode)
	}
	if health.StatusCode != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", health.StatusCode)
	}
}

func TestRouterRateLimitIgnoresForwardedFor(t *testing.T) {
	srv := newTestServer(t, fixedFetcher{raw: []any{}}, 1)

	codes := make([]int, 0, 3)
	for i := 1; i <= 3; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/counts", nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		_ = resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] != http.StatusOK {
		t.Fatalf("first status = %d", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Fatalf("request %d with rotated X-Forwarded-For got %d, want 429", i+2, code)
		}
	}
}

func TestRouterMethodHandling(t *testing.T) {
	srv := newTestServer(t, fixedFetcher{raw: []any{}}, 0)

	tests := []struct {
		name     string
		method   string
		path     string
		headers  map[string]string
		wantCode int
	}{
		{name: "post static", method: http.MethodPost, path: "/", wantCode: http.StatusMethodNotAllowed},
		{name: "post counts", method: http.MethodPost, path: "/api/counts", wantCode: http.StatusMethodNotAllowed},
		{name: "bare options", method: http.MethodOptions, path: "/api/counts", wantCode: http.StatusMethodNotAllowed},
		{
			name:   "preflight",
			method: http.MethodOptions,
			path:   "/api/counts",
			headers: map[string]string{
				"Origin":                        "https://display.example.com",
				"Access-Control-Request-Method": http.MethodGet,
			},
			wantCode: http.StatusNoContent,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, srv.URL+tc.path, nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			_ = resp.Body.Close()
			if resp.StatusCode != tc.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantCode)
			}
		})
	}
}
