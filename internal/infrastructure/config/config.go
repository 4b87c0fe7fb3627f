package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Redis (leave empty to run without cache, idempotency and event stream)
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes        int64         `env:"MAX_BODY_BYTES"        envDefault:"10485760"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Caching and idempotency
	CacheTTL       time.Duration `env:"CACHE_TTL"       envDefault:"15m"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Scoring
	RiskPolicy            string `env:"RISK_POLICY"             envDefault:"standard"`
	RiskLowThreshold      int    `env:"RISK_LOW_THRESHOLD"      envDefault:"0"`
	RiskModerateThreshold int    `env:"RISK_MODERATE_THRESHOLD" envDefault:"0"`
	MaxLedgerRows         int    `env:"MAX_LEDGER_ROWS"         envDefault:"100000"`
	BatchConcurrency      int    `env:"BATCH_CONCURRENCY"       envDefault:"8"`

	// Rate limiting (per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Events
	EventStream       string        `env:"EVENT_STREAM"        envDefault:"udaancredit:assessments"`
	EventStreamMaxLen int64         `env:"EVENT_STREAM_MAXLEN" envDefault:"10000"`
	EventBufferSize   int           `env:"EVENT_BUFFER_SIZE"   envDefault:"1024"`
	EventFlushPeriod  time.Duration `env:"EVENT_FLUSH_PERIOD"  envDefault:"1s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis URL is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}
