package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal"
)

const ServiceName = "pharmaerp-api"

const minSecretLen = 32

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	DBQueryTimeout time.Duration
	DBMaxConns     int32

	LoginRateLimit  int
	LoginRateWindow time.Duration
	ListCacheTTL    time.Duration

	CORSAllowedOrigins []string
	LoginURL           string
	UnauthorizedURL    string

	MigrateOnStart  bool
	SwaggerEnabled  bool
	ShutdownTimeout time.Duration

	BootstrapAdminUsername string
	BootstrapAdminPassword string
}

// Load reads the process environment. Malformed optional values fall back to
// their defaults; missing required values are an error.
func Load() (Config, error) {
	cfg := Config{
		Port:        internal.Env("APP_PORT", "8080"),
		DatabaseURL: strings.TrimSpace(internal.Env("DATABASE_URL", "")),
		RedisURL:    strings.TrimSpace(internal.Env("REDIS_URL", "")),

		JWTSecret:   internal.Env("JWT_SECRET", ""),
		JWTIssuer:   internal.Env("JWT_ISSUER", "pharmaerp-api"),
		JWTAudience: internal.Env("JWT_AUDIENCE", "pharmaerp-web"),
		JWTTTL:      parseDurationEnv("JWT_TTL", time.Hour),

		DBQueryTimeout: parseDurationEnv("DB_QUERY_TIMEOUT", 3*time.Second),
		DBMaxConns:     int32(parseIntEnv("DB_MAX_CONNS", 10)),

		LoginRateLimit:  parseIntEnv("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: parseDurationEnv("LOGIN_RATE_WINDOW", time.Minute),
		ListCacheTTL:    parseDurationEnv("LIST_CACHE_TTL", 30*time.Second),

		CORSAllowedOrigins: parseListEnv("CORS_ALLOWED_ORIGINS"),
		LoginURL:           strings.TrimSpace(internal.Env("LOGIN_URL", "")),
		UnauthorizedURL:    strings.TrimSpace(internal.Env("UNAUTHORIZED_URL", "")),

		MigrateOnStart:  parseBoolEnv("MIGRATE_ON_START", false),
		SwaggerEnabled:  parseBoolEnv("SWAGGER_ENABLED", true),
		ShutdownTimeout: parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),

		BootstrapAdminUsername: strings.TrimSpace(internal.Env("BOOTSTRAP_ADMIN_USERNAME", "")),
		BootstrapAdminPassword: internal.Env("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing env: %s", strings.Join(missing, ", "))
	}
	if len(cfg.JWTSecret) < minSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, errors.New("JWT_TTL must be positive")
	}

	return cfg, nil
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	val := strings.TrimSpace(internal.Env(key, ""))
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("invalid %s: %q, using default", key, val)
		return def
	}
	return d
}

func parseIntEnv(key string, def int) int {
	val := strings.TrimSpace(internal.Env(key, ""))
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("invalid %s: %q, using default", key, val)
		return def
	}
	return n
}

func parseBoolEnv(key string, def bool) bool {
	val := strings.TrimSpace(internal.Env(key, ""))
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Printf("invalid %s: %q, using default", key, val)
		return def
	}
	return b
}

func parseListEnv(key string) []string {
	val := strings.TrimSpace(internal.Env(key, ""))
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
