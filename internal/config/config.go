package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment.
type Config struct {
	Addr             string
	DatabaseURL      string
	LogLevel         string
	LogJSON          bool
	Debug            bool
	IdleTTL          time.Duration
	DefaultInitial   time.Duration
	DefaultIncrement time.Duration
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:        getenv("VC_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
	}
	var err error
	if cfg.LogJSON, err = boolEnv("LOG_JSON", false); err != nil {
		return cfg, err
	}
	if cfg.Debug, err = boolEnv("VC_DEBUG", false); err != nil {
		return cfg, err
	}
	if cfg.IdleTTL, err = durationEnv("VC_IDLE_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.DefaultInitial, err = durationEnv("VC_DEFAULT_INITIAL", 5*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.DefaultIncrement, err = durationEnv("VC_DEFAULT_INCREMENT", 0); err != nil {
		return cfg, err
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return def, fmt.Errorf("%s: negative duration %s", key, v)
	}
	return d, nil
}
