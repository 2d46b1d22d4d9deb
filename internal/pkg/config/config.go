package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultTokenLifetime = 24 * time.Hour

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type JWTConfig struct {
	SecretKey     string
	TokenLifetime time.Duration
	Issuer        string
	Audience      string
	CookieName    string
}

type HISConfig struct {
	BaseURL string
}

type Config struct {
	Postgres   PostgresConfig
	JWT        JWTConfig
	HIS        HISConfig
	ServerPort string
	Env        string
}

// IsProduction reports whether the process runs with the production
// environment flag.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (*Config, error) {
	cfg := &Config{
		Postgres: PostgresConfig{
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			DB:       getEnvOrDefault("POSTGRES_DB", "ppk_portal"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			MaxConns: 10,
			MinConns: 2,
		},
		JWT: JWTConfig{
			SecretKey:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
			TokenLifetime: ParseLifetime(os.Getenv("JWT_EXPIRES"), defaultTokenLifetime),
			Issuer:        getEnvOrDefault("JWT_ISSUER", "ppk-app"),
			Audience:      getEnvOrDefault("JWT_AUDIENCE", "ppk-users"),
			CookieName:    getEnvOrDefault("COOKIE_NAME", "access_token"),
		},
		HIS: HISConfig{
			BaseURL: getEnvOrDefault("HIS_BASE_URL", "http://172.16.78.22/ppk11/his"),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
		Env:        getEnvOrDefault("APP_ENV", "development"),
	}

	// The process must not serve requests without a signing secret.
	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

var shorthandRe = regexp.MustCompile(`^(\d+)\s*([dhms])$`)

// ParseLifetime accepts either an integer seconds count or a shorthand
// duration string (1d, 12h, 30m, 45s). Unparsable input falls back.
func ParseLifetime(input string, fallback time.Duration) time.Duration {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fallback
	}

	if secs, err := strconv.Atoi(trimmed); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	m := shorthandRe.FindStringSubmatch(strings.ToLower(trimmed))
	if m == nil {
		return fallback
	}
	val, err := strconv.Atoi(m[1])
	if err != nil || val <= 0 {
		return fallback
	}
	switch m[2] {
	case "d":
		return time.Duration(val) * 24 * time.Hour
	case "h":
		return time.Duration(val) * time.Hour
	case "m":
		return time.Duration(val) * time.Minute
	default:
		return time.Duration(val) * time.Second
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
