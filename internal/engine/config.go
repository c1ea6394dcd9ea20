package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// DefaultAPIBaseURL is used when neither base URL variable is set.
const DefaultAPIBaseURL = "http://127.0.0.1:8000/api"

// Config holds all engine configuration, injected from main.
type Config struct {
	APIBaseURL           string
	BackendTimeout       time.Duration // 0 = no per-call timeout
	BackendRetries       int           // 0 = single attempt
	ProxyURL             string        // optional socks5 proxy for backend calls
	CacheTTL             time.Duration // 0 = backend responses are not cached
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	RedisURL             string
	HistoryDBPath        string
	DatabaseURL          string // postgres history; overrides HistoryDBPath
	WebPort              string
	CORSOrigins          []string
	SubmitRatePerMin     int
	WebMaxSessions       int
	TelegramToken        string
	WaitBackend          time.Duration
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = NewHTTPClient(c.ProxyURL, c.BackendTimeout)
	}
	cfg = c
	Cfg = &cfg
}

// BackendRetryConfig returns the retry policy for backend calls.
// With BackendRetries == 0 every call is attempted exactly once.
func (c Config) BackendRetryConfig() RetryConfig {
	rc := DefaultRetryConfig
	rc.MaxRetries = max(c.BackendRetries, 0)
	return rc
}

// APIBaseURL resolves the backend base from NEXT_PUBLIC_API_BASE_URL,
// then API_BASE_URL.
func APIBaseURL() string {
	return env.Str("NEXT_PUBLIC_API_BASE_URL", env.Str("API_BASE_URL", DefaultAPIBaseURL))
}

// ConfigFromEnv reads the configuration from environment variables.
func ConfigFromEnv() Config {
	return Config{
		APIBaseURL:           APIBaseURL(),
		BackendTimeout:       env.Duration("BACKEND_TIMEOUT", 0),
		BackendRetries:       env.Int("BACKEND_RETRIES", 0),
		ProxyURL:             env.Str("PROXY_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 0),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		RedisURL:             env.Str("REDIS_URL", ""),
		HistoryDBPath:        env.Str("HISTORY_DB", ""),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		WebPort:              env.Str("WEB_PORT", "3000"),
		CORSOrigins:          env.List("CORS_ORIGINS", "*"),
		SubmitRatePerMin:     env.Int("SUBMIT_RATE_PER_MIN", 10),
		WebMaxSessions:       env.Int("WEB_MAX_SESSIONS", 10000),
		TelegramToken:        env.Str("TELEGRAM_BOT_TOKEN", ""),
		WaitBackend:          env.Duration("WAIT_BACKEND", 0),
	}
}
