// Package counts derives a daily summary from an eco-visio counter series.
//
// The upstream series is a JSON array of [date, count] pairs in ascending
// date order. Its last element is the current day, which is still
// accumulating and is excluded from every aggregate.
package counts

import (
	"time"

	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
)

// DateLayout is the upstream date format (MM/DD/YYYY).
const DateLayout = "01/02/2006"

// Aggregator turns a raw series into a domain.Summary. The zero value uses
// DefaultPolicy.
type Aggregator struct {
	Policy Policy
}

// New returns an Aggregator using the given policy.
func New(policy Policy) Aggregator {
	return Aggregator{Policy: policy}
}

// Summarize applies the default policy to raw.
func Summarize(raw any, now time.Time) domain.Summary {
	return Aggregator{}.Summarize(raw, now)
}

// Summarize never fails: malformed input degrades to zero counts and
// malformed entries are skipped individually.
func (a Aggregator) Summarize(raw any, now time.Time) domain.Summary {
	summary := domain.Summary{
		Year:      now.Year(),
		FetchedAt: now,
	}

	series, ok := raw.([]any)
	if !ok || len(series) < 2 {
		return summary
	}
	complete := series[:len(series)-1]

	for _, item := range complete {
		date, count, ok := splitEntry(item)
		if !ok {
			summary.SkippedEntries++
			continue
		}
		if year, ok := yearOf(date); ok && year == summary.Year {
			summary.YearToDateCount += coerceCount(count)
		}
	}

	switch a.Policy {
	case PolicyCalendarYesterday:
		summary.MostRecentCompleteDayDate, summary.MostRecentCompleteDayCount = calendarYesterday(series, now)
	default:
		if date, count, ok := splitEntry(complete[len(complete)-1]); ok {
			summary.MostRecentCompleteDayDate = dateString(date)
			summary.MostRecentCompleteDayCount = coerceCount(count)
		}
	}
	return summary
}

// calendarYesterday searches the whole series, trailing entry included, for
// the row dated the day before now.
func calendarYesterday(series []any, now time.Time) (string, int) {
	want := now.AddDate(0, 0, -1).Format(DateLayout)
	count := 0
	for _, item := range series {
		date, c, ok := splitEntry(item)
		if !ok {
			continue
		}
		if s, isString := date.(string); isString && s == want {
			count = coerceCount(c)
		}
	}
	return want, count
}

// splitEntry returns the first two fields of a [date, count, ...] entry.
func splitEntry(item any) (date any, count any, ok bool) {
	pair, isArray := item.([]any)
	if !isArray || len(pair) < 2 {
		return nil, nil, false
	}
	return pair[0], pair[1], true
}

func dateString(date any) string {
	if s, ok := date.(string); ok {
		return s
	}
	return ""
}
