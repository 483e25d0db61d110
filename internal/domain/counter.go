package domain

import (
	"fmt"
	"strings"
)

// FlowIDSeparator joins multiple flow ids in the upstream query string.
const FlowIDSeparator = ";"

// CounterConfig identifies one counter installation on the eco-visio platform.
// It is built once at startup and only read afterwards.
type CounterConfig struct {
	SiteID         string   `yaml:"site_id"`
	FlowIDs        []string `yaml:"flow_ids"`
	OrganizationID string   `yaml:"organization_id"`
}

// FlowIDsParam returns the flow ids in upstream form, e.g. "353403894;353403895".
func (c CounterConfig) FlowIDsParam() string {
	return strings.Join(c.FlowIDs, FlowIDSeparator)
}

// Validate reports whether the config can be used to build an upstream request.
func (c CounterConfig) Validate() error {
	if strings.TrimSpace(c.SiteID) == "" {
		return fmt.Errorf("%w: site id is required", ErrInvalidCounter)
	}
	if strings.TrimSpace(c.OrganizationID) == "" {
		return fmt.Errorf("%w: organization id is required", ErrInvalidCounter)
	}
	if len(c.FlowIDs) == 0 {
		return fmt.Errorf("%w: at least one flow id is required", ErrInvalidCounter)
	}
	for _, id := range c.FlowIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty flow id", ErrInvalidCounter)
		}
	}
	return nil
}

// ParseFlowIDs splits a separator list ("a;b" or "a,b") into trimmed ids.
func ParseFlowIDs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		if id := strings.TrimSpace(f); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
