package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SessionBackend selects where the session mirror is persisted.
type SessionBackend string

const (
	SessionBackendFile  SessionBackend = "file"
	SessionBackendRedis SessionBackend = "redis"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Backend SessionBackend
	// File is the session file path, used when Backend is "file".
	File string
	// RedisAddr and RedisDB are used when Backend is "redis".
	RedisAddr string
	RedisDB   int
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:10000"),
			Timeout: getEnvDuration("API_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			Backend:   SessionBackend(getEnv("SESSION_BACKEND", string(SessionBackendFile))),
			File:      getEnv("SESSION_FILE", defaultSessionFile()),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:   getEnvInt("REDIS_DB", 0),
		},
	}

	switch cfg.Session.Backend {
	case SessionBackendFile, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	return cfg, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".nbmshop", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		fmt.Printf("Warning: invalid duration for %s, using default\n", key)
	}
	return defaultValue
}
