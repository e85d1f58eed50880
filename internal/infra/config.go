package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"veyra"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"veyra"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"veyra"`

	// JWT
	JWTSecret      string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTUserExpiry  string `env:"JWT_USER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Kafka
	KafkaBrokers       string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled       bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	SecurityEventTopic string `env:"SECURITY_EVENT_TOPIC" envDefault:"security-events"`

	// Risk scoring tunables. Level bands are half-open: a score at the
	// threshold belongs to the higher level.
	RiskMediumThreshold   int           `env:"RISK_MEDIUM_THRESHOLD" envDefault:"20"`
	RiskHighThreshold     int           `env:"RISK_HIGH_THRESHOLD" envDefault:"50"`
	RiskCriticalThreshold int           `env:"RISK_CRITICAL_THRESHOLD" envDefault:"75"`
	QuietHoursStart       int           `env:"QUIET_HOURS_START" envDefault:"0"`
	QuietHoursEnd         int           `env:"QUIET_HOURS_END" envDefault:"5"`
	NewAccountThreshold   time.Duration `env:"NEW_ACCOUNT_THRESHOLD" envDefault:"24h"`
	FailedAttemptWindow   time.Duration `env:"FAILED_ATTEMPT_WINDOW" envDefault:"1h"`

	// Login rate limiting
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure or inconsistent configuration that must not
// run in production. Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret
// checks (local dev only).
func (c *Config) Validate() error {
	if !c.AllowInsecureDefaults {
		if c.JWTSecret == "change-me-in-production" {
			return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
		}
	}
	if !(c.RiskMediumThreshold < c.RiskHighThreshold && c.RiskHighThreshold < c.RiskCriticalThreshold) {
		return fmt.Errorf("risk thresholds must be strictly increasing: medium=%d high=%d critical=%d",
			c.RiskMediumThreshold, c.RiskHighThreshold, c.RiskCriticalThreshold)
	}
	if c.QuietHoursStart < 0 || c.QuietHoursStart > 23 || c.QuietHoursEnd < 0 || c.QuietHoursEnd > 23 {
		return fmt.Errorf("quiet hours must be within 0-23: start=%d end=%d", c.QuietHoursStart, c.QuietHoursEnd)
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
