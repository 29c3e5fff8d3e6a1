package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const EnvProduction = "production"

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	Environment string
	HTTPPort    string
	PostgresDSN string
	RedisAddr   string

	// Tenancy routing.
	BaseDomain     string
	OverrideHeader string
	ExemptPaths    []string
	CacheTTL       time.Duration
	SweepInterval  time.Duration

	// AllowUnresolvedTenant lets non-exempt requests through without a
	// tenant. Load forces it off in production; it exists only for
	// local development without wildcard DNS.
	AllowUnresolvedTenant bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "atrium"
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env == "" {
		env = "development"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	baseDomain := strings.TrimSpace(os.Getenv("BASE_DOMAIN"))

	overrideHeader := strings.TrimSpace(os.Getenv("TENANT_HEADER"))
	if overrideHeader == "" {
		overrideHeader = "X-Tenant-Key"
	}

	exempt := []string{"/healthz", "/api/organizations"}
	if raw := os.Getenv("EXEMPT_PATHS"); raw != "" {
		exempt = exempt[:0]
		for _, value := range strings.Split(raw, ",") {
			value = strings.TrimSpace(value)
			if value != "" {
				exempt = append(exempt, value)
			}
		}
	}

	allowUnresolved := envBool("DEV_ALLOW_UNRESOLVED_TENANT", false)
	if env == EnvProduction {
		// The passthrough must be unreachable in production builds.
		allowUnresolved = false
	}

	return Config{
		ServiceName:           service,
		Environment:           env,
		HTTPPort:              port,
		PostgresDSN:           os.Getenv("POSTGRES_DSN"),
		RedisAddr:             strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		BaseDomain:            baseDomain,
		OverrideHeader:        overrideHeader,
		ExemptPaths:           exempt,
		CacheTTL:              envDuration("CATALOG_CACHE_TTL", 30*time.Second),
		SweepInterval:         envDuration("CATALOG_SWEEP_INTERVAL", 10*time.Second),
		AllowUnresolvedTenant: allowUnresolved,
	}, nil
}

// Production reports whether this process runs with production
// hardening (override header disabled, passthrough unreachable).
func (c Config) Production() bool {
	return c.Environment == EnvProduction
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
