// Package metrics keeps process-local service counters and renders them in
// the Prometheus text exposition format.
package metrics

import (
	"errors"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
)

// ContentType is the media type of WriteText output.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Upstream fetch outcomes.
const (
	ResultOK           = "ok"
	ResultNetworkError = "network_error"
	ResultStatusError  = "status_error"
	ResultParseError   = "parse_error"
	ResultTooLarge     = "too_large"
	ResultOtherError   = "error"
)

const (
	nameUpstreamRequests = "bikecount_upstream_requests_total"
	nameUpstreamDuration = "bikecount_upstream_last_duration_seconds"
	nameHTTPRequests     = "bikecount_http_requests_total"
	nameSkippedEntries   = "bikecount_skipped_entries_total"
)

type httpKey struct {
	route string
	code  int
}

// Registry is safe for concurrent use. The zero value is not usable; call New.
type Registry struct {
	mu           sync.Mutex
	upstream     map[string]uint64
	lastDuration float64
	httpRequests map[httpKey]uint64
	skipped      uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		upstream:     make(map[string]uint64),
		httpRequests: make(map[httpKey]uint64),
	}
}

// ResultFor classifies a fetch error into an upstream result label.
func ResultFor(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrUpstreamNetwork):
		return ResultNetworkError
	case errors.Is(err, domain.ErrUpstreamStatus):
		return ResultStatusError
	case errors.Is(err, domain.ErrUpstreamTooLarge):
		return ResultTooLarge
	case errors.Is(err, domain.ErrUpstreamParse):
		return ResultParseError
	default:
		return ResultOtherError
	}
}

// ObserveUpstream records one upstream fetch.
func (r *Registry) ObserveUpstream(err error, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upstream[ResultFor(err)]++
	r.lastDuration = elapsed.Seconds()
}

// ObserveHTTP records one served request by route pattern and status code.
func (r *Registry) ObserveHTTP(route string, code int) {
	if route == "" {
		route = "static"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.httpRequests[httpKey{route: route, code: code}]++
}

// AddSkipped records malformed series entries ignored by the aggregator.
func (r *Registry) AddSkipped(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped += uint64(n)
}

// UpstreamCount returns the number of fetches recorded with result.
func (r *Registry) UpstreamCount(result string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upstream[result]
}

// Gather snapshots the registry as metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	upstream := family(nameUpstreamRequests, "Upstream series fetches by result.", dto.MetricType_COUNTER)
	for _, result := range sortedKeys(r.upstream) {
		upstream.Metric = append(upstream.Metric, counter(float64(r.upstream[result]), label("result", result)))
	}

	duration := family(nameUpstreamDuration, "Duration of the most recent upstream fetch.", dto.MetricType_GAUGE)
	duration.Metric = append(duration.Metric, gauge(r.lastDuration))

	httpReqs := family(nameHTTPRequests, "HTTP requests served by route and status code.", dto.MetricType_COUNTER)
	keys := make([]httpKey, 0, len(r.httpRequests))
	for k := range r.httpRequests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].route != keys[j].route {
			return keys[i].route < keys[j].route
		}
		return keys[i].code < keys[j].code
	})
	for _, k := range keys {
		httpReqs.Metric = append(httpReqs.Metric, counter(float64(r.httpRequests[k]),
			label("code", strconv.Itoa(k.code)), label("route", k.route)))
	}

	skipped := family(nameSkippedEntries, "Malformed series entries skipped during aggregation.", dto.MetricType_COUNTER)
	skipped.Metric = append(skipped.Metric, counter(float64(r.skipped)))

	families := []*dto.MetricFamily{upstream, duration, httpReqs, skipped}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	return families
}

// WriteText encodes all families in the text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Gather() {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func family(name, help string, typ dto.MetricType) *dto.MetricFamily {
	return &dto.MetricFamily{Name: &name, Help: &help, Type: typ.Enum()}
}

func counter(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Counter: &dto.Counter{Value: &v}}
}

func gauge(v float64) *dto.Metric {
	return &dto.Metric{Gauge: &dto.Gauge{Value: &v}}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: &name, Value: &value}
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
