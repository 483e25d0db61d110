package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adamdavies1915/bikecountdisplay/internal/counts"
	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
)

// Lafitte Greenway counter, used when no counter is configured.
const (
	defaultSiteID         = "300036768"
	defaultFlowIDs        = "353403894;353403895"
	defaultOrganizationID = "250"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	StaticDir          string
	EcoVisioBaseURL    string
	UpstreamTimeout    time.Duration
	Counter            domain.CounterConfig
	CounterConfigFile  string
	Location           *time.Location
	SummaryPolicy      counts.Policy
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	CORSAllowedOrigins []string
	TrustProxy         bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "3000"),
		StaticDir:         getEnv("STATIC_DIR", "public"),
		EcoVisioBaseURL:   os.Getenv("ECOVISIO_BASE_URL"),
		UpstreamTimeout:   time.Second * time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 15)),
		CounterConfigFile: strings.TrimSpace(os.Getenv("COUNTER_CONFIG_FILE")),
		Counter: domain.CounterConfig{
			SiteID:         getEnv("COUNTER_SITE_ID", defaultSiteID),
			FlowIDs:        domain.ParseFlowIDs(getEnv("COUNTER_FLOW_IDS", defaultFlowIDs)),
			OrganizationID: getEnv("COUNTER_ORG_ID", defaultOrganizationID),
		},
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		TrustProxy:         getEnvBool("TRUST_PROXY", false),
	}

	timezone := getEnv("COUNTER_TIMEZONE", "Local")
	if cfg.CounterConfigFile != "" {
		file, err := LoadCounterFile(cfg.CounterConfigFile)
		if err != nil {
			return nil, err
		}
		file.apply(&cfg.Counter)
		if file.Timezone != "" {
			timezone = file.Timezone
		}
	}

	if err := cfg.Counter.Validate(); err != nil {
		return nil, err
	}

	loc, err := loadLocation(timezone)
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	policy, err := counts.ParsePolicy(os.Getenv("SUMMARY_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.SummaryPolicy = policy

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("COUNTER_TIMEZONE: %w", err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
