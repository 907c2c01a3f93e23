package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	CampusBase    string
	CampusRPS     int
	CampusTimeout time.Duration
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	SessionSecret string
	SessionTTL    time.Duration
	SessionIdle   time.Duration
	UIRatePerSec  int
	DefaultLang   string
	RouteWalk     bool
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		CampusBase:    env("CAMPUS_API_BASE_URL", "http://localhost:5000"),
		CampusRPS:     atoi("CAMPUS_API_RPS", 10),
		CampusTimeout: time.Duration(atoi("CAMPUS_API_TIMEOUT_SECONDS", 10)) * time.Second,
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		SessionSecret: env("SESSION_SECRET", ""),
		SessionTTL:    time.Duration(atoi("SESSION_TTL_SECONDS", 86400)) * time.Second,
		SessionIdle:   time.Duration(atoi("SESSION_IDLE_SECONDS", 900)) * time.Second,
		UIRatePerSec:  atoi("UI_RATE_PER_SECOND", 20),
		DefaultLang:   env("DEFAULT_LANG", "ko"),
		RouteWalk:     boolEnv("ROUTE_WALK_ENABLED", false),
	}
	if c.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is empty; using an insecure development secret")
		c.SessionSecret = "dev-insecure-secret"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func boolEnv(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
