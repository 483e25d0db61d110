package domain

import "time"

// Summary is the derived view of a counter series.
type Summary struct {
	MostRecentCompleteDayCount int
	MostRecentCompleteDayDate  string
	YearToDateCount            int
	Year                       int
	FetchedAt                  time.Time

	// SkippedEntries counts malformed series entries ignored during aggregation.
	SkippedEntries int
}

// FetchedAtLayout matches JavaScript's Date.toISOString.
const FetchedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// CountsPayload is the wire shape of a Summary shared by the HTTP API and
// the CLI. SkippedEntries stays internal.
type CountsPayload struct {
	Yesterday     int    `json:"yesterday"`
	YearToDate    int    `json:"yearToDate"`
	YesterdayDate string `json:"yesterdayDate"`
	Year          int    `json:"year"`
	FetchedAt     string `json:"fetchedAt"`
}

// Payload converts s to its wire shape with FetchedAt in UTC.
func (s Summary) Payload() CountsPayload {
	return CountsPayload{
		Yesterday:     s.MostRecentCompleteDayCount,
		YearToDate:    s.YearToDateCount,
		YesterdayDate: s.MostRecentCompleteDayDate,
		Year:          s.Year,
		FetchedAt:     s.FetchedAt.UTC().Format(FetchedAtLayout),
	}
}
