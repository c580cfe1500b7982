package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds rate limiting configuration. Requests that match no route
// use DefaultLimit per DefaultWindow.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL drops buckets unused for this long. Defaults to one hour.
	IdleTTL   time.Duration
	Whitelist map[string]bool
	Blacklist map[string]bool
	Routes    []Route
}

func defaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Routes:          DefaultRoutes(),
	}
}

// LoadConfig reads RATE_LIMIT_* variables over the defaults.
func LoadConfig() *Config {
	cfg := defaultConfig()
	if v, ok := envValue("RATE_LIMIT_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}
	if v, ok := envValue("RATE_LIMIT_DEFAULT_LIMIT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultLimit = n
		}
	}
	cfg.DefaultWindow = envDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = envDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Whitelist = ipSet(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = ipSet(os.Getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

func envValue(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, ok := envValue(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// ipSet parses a comma-separated address list.
func ipSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
