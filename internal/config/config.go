package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultUpstreamURL is the DeepWiki API base URL used when
	// DEEPWIKI_API_HOST is not set.
	DefaultUpstreamURL = "http://localhost:9781"

	// DefaultPort is the inbound listen port for the gateway.
	DefaultPort = 9783

	// DefaultUpstreamTimeout covers the full streamed upstream call. Answers
	// stream slowly while the upstream generates, so the ceiling is generous.
	DefaultUpstreamTimeout = 5 * time.Minute
)

// Config holds all gateway configuration. It is built once in main and
// passed down explicitly; nothing reads the environment after startup.
type Config struct {
	Host            string
	Port            int
	UpstreamURL     string
	UpstreamTimeout time.Duration
	Verbose         bool
}

// DefaultFromEnv creates a Config with defaults from environment variables.
func DefaultFromEnv() *Config {
	return &Config{
		Host:            envOrDefault("DEEPWIKI_MCP_HOST", "0.0.0.0"),
		Port:            envInt("DEEPWIKI_MCP_PORT", DefaultPort),
		UpstreamURL:     strings.TrimRight(envOrDefault("DEEPWIKI_API_HOST", DefaultUpstreamURL), "/"),
		UpstreamTimeout: envDuration("DEEPWIKI_HTTP_TIMEOUT", DefaultUpstreamTimeout),
		Verbose:         envBool("DEEPWIKI_MCP_VERBOSE"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

// envDuration reads a duration either as a Go duration string ("90s", "2m")
// or as a bare number of seconds, which is what the Python deployments used.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
