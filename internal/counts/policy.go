package counts

import (
	"fmt"
	"strings"

	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
)

// Policy selects how the most recent complete day is located in a series.
type Policy string

const (
	// PolicyLastComplete takes the entry just before the trailing (incomplete) one.
	PolicyLastComplete Policy = "last-complete"
	// PolicyCalendarYesterday looks up the entry dated one calendar day before now.
	// Kept for dashboards that relied on the older behavior; it reports zero when
	// the upstream is late publishing yesterday's row.
	PolicyCalendarYesterday Policy = "calendar-yesterday"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyLastComplete

// ParsePolicy maps a configuration value onto a Policy. Empty means DefaultPolicy.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultPolicy, nil
	case PolicyLastComplete:
		return PolicyLastComplete, nil
	case PolicyCalendarYesterday, "yesterday":
		return PolicyCalendarYesterday, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedPolicy, name)
	}
}

func (p Policy) String() string {
	return string(p)
}
