package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// CacheMaxSize bounds the parsed-model and resolver caches.
	CacheMaxSize int

	// Result pagination.
	ResultLimit int
	MaxLimit    int

	// Validate tool defaults.
	ValidateStrict     bool
	ValidateNoWarnings bool

	// MaxInlineSize bounds inline model content, in bytes.
	MaxInlineSize int64
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from MODELTOOLS_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheMaxSize:       envInt("MODELTOOLS_MCP_CACHE_SIZE", 16),
		ResultLimit:        envInt("MODELTOOLS_MCP_RESULT_LIMIT", 100),
		MaxLimit:           envInt("MODELTOOLS_MCP_MAX_LIMIT", 1000),
		ValidateStrict:     envBool("MODELTOOLS_VALIDATE_STRICT", false),
		ValidateNoWarnings: envBool("MODELTOOLS_VALIDATE_NO_WARNINGS", false),
		MaxInlineSize:      int64(envInt("MODELTOOLS_MAX_INLINE_SIZE", 10*1024*1024)),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}
