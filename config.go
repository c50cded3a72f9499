package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultPort        = "8081"
	defaultUSDABaseURL = "https://api.nal.usda.gov"
	defaultTokenTTL    = 7 * 24 * time.Hour
)

// config is read from the environment after godotenv has loaded .env.
type config struct {
	DBURL       string
	JWTSecret   string
	Port        string
	USDAAPIKey  string
	USDABaseURL string
	CORSOrigins []string
	TokenTTL    time.Duration
}

// loadConfig reads the environment. DB_URL and JWT_SECRET are required.
func loadConfig() (config, error) {
	cfg := config{
		DBURL:       os.Getenv("DB_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Port:        envOr("PORT", defaultPort),
		USDAAPIKey:  os.Getenv("USDA_API_KEY"),
		USDABaseURL: strings.TrimRight(envOr("USDA_BASE_URL", defaultUSDABaseURL), "/"),
		CORSOrigins: []string{"*"},
		TokenTTL:    defaultTokenTTL,
	}

	if cfg.DBURL == "" {
		return config{}, errors.New("DB_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return config{}, errors.New("JWT_SECRET is not set")
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return config{}, fmt.Errorf("invalid TOKEN_TTL %q", v)
		}
		cfg.TokenTTL = ttl
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
