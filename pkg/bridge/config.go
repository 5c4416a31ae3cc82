package bridge

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"gryffintwin/pkg/envconf"
)

type Config struct {
	Addr           string
	BackendURL     string // API base, e.g. http://127.0.0.1:8081
	BackendTimeout time.Duration
	RedisURL       string
	CookieName     string
	IdleTimeout    time.Duration // sliding; a session never outlives its bearer token
	CookieSecure   bool
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Addr:           envconf.String("FRONTEND_ADDR", ":5000"),
		BackendURL:     strings.TrimRight(envconf.String("BACKEND_URL", "http://127.0.0.1:8081"), "/"),
		BackendTimeout: envconf.Duration("BACKEND_TIMEOUT", 5*time.Second),
		RedisURL:       envconf.String("REDIS_URL", "redis://localhost:6379/0"),
		CookieName:     envconf.String("SESSION_COOKIE", "gryffin_session"),
		IdleTimeout:    envconf.Duration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		CookieSecure:   envconf.Bool("COOKIE_SECURE", false),
	}
	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, errors.New("BACKEND_URL must be an absolute http(s) URL")
	}
	return cfg, nil
}
