package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
)

// CounterFile is the optional YAML document pointed to by COUNTER_CONFIG_FILE.
//
//	counter:
//	  site_id: "300036768"
//	  flow_ids: ["353403894", "353403895"]
//	  organization_id: "250"
//	timezone: America/Chicago
type CounterFile struct {
	Counter  domain.CounterConfig `yaml:"counter"`
	Timezone string               `yaml:"timezone"`
}

// LoadCounterFile reads and parses a counter file.
func LoadCounterFile(path string) (*CounterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("counter file: read %q: %w", path, err)
	}
	var file CounterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("counter file: parse %q: %w", path, err)
	}
	file.Timezone = strings.TrimSpace(file.Timezone)
	return &file, nil
}

// apply overrides the fields of dst that are set in the file.
func (f *CounterFile) apply(dst *domain.CounterConfig) {
	if v := strings.TrimSpace(f.Counter.SiteID); v != "" {
		dst.SiteID = v
	}
	if v := strings.TrimSpace(f.Counter.OrganizationID); v != "" {
		dst.OrganizationID = v
	}
	if len(f.Counter.FlowIDs) > 0 {
		dst.FlowIDs = domain.ParseFlowIDs(strings.Join(f.Counter.FlowIDs, domain.FlowIDSeparator))
	}
}
