package ecovisio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
	"github.com/adamdavies1915/bikecountdisplay/internal/infra"
)

// DefaultBaseURL is the public eco-visio web page API.
const DefaultBaseURL = "https://www.eco-visio.net/api/aladdin/1.0.0/pbl/publicwebpageplus"

// dailyInterval asks the upstream for one data point per day.
const dailyInterval = "4"

// DefaultMaxBodyBytes bounds how much of an upstream body is read.
const DefaultMaxBodyBytes = 8 << 20

// Options configures the eco-visio client.
type Options struct {
	BaseURL        string
	UserAgent      string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Client fetches counter series from eco-visio. It holds no per-request state
// and is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *infra.Logger
	maxBody    int64
}

// NewClient constructs a client with defaults for any unset option.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "bikecountdisplay/1.0"
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger,
		maxBody:    maxBody,
	}
}

// BaseURL returns the configured upstream root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SeriesURL builds the daily data URL for a counter.
func (c *Client) SeriesURL(counter domain.CounterConfig) string {
	site := url.PathEscape(counter.SiteID)
	query := "idOrganisme=" + url.QueryEscape(counter.OrganizationID) +
		"&idPdc=" + url.QueryEscape(counter.SiteID) +
		"&interval=" + dailyInterval +
		"&flowIds=" + url.QueryEscape(counter.FlowIDsParam())
	return c.baseURL + "/data/" + site + "?" + query
}

// FetchSeries performs one GET for the counter and returns the decoded JSON
// body unchanged, normally an array of [date, count] pairs. Numbers are kept
// as json.Number. Errors wrap domain.ErrUpstreamNetwork, ErrUpstreamStatus,
// ErrUpstreamTooLarge or ErrUpstreamParse.
func (c *Client) FetchSeries(ctx context.Context, counter domain.CounterConfig) (any, error) {
	endpoint := c.SeriesURL(counter)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ecovisio: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ecovisio: http request: %w: %w", domain.ErrUpstreamNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("ecovisio: read response: %w: %w", domain.ErrUpstreamNetwork, err)
	}
	if int64(len(raw)) > c.maxBody {
		return nil, fmt.Errorf("ecovisio: read response: %w: more than %d bytes", domain.ErrUpstreamTooLarge, c.maxBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ecovisio: %w: status %d: %s", domain.ErrUpstreamStatus, resp.StatusCode, snippet(raw))
	}

	series, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("ecovisio: decode response: %w: %w", domain.ErrUpstreamParse, err)
	}

	c.logger.Debug().
		Str("site_id", counter.SiteID).
		Int("bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("ecovisio: fetched series")
	return series, nil
}

// decode parses exactly one JSON value; trailing garbage is an error.
func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
