package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ListenAddr string

	DatabaseURL string

	OllamaURL        string
	OllamaModel      string
	OllamaTimeout    time.Duration
	OllamaMaxRetries int

	MaxTextLength    int
	SyncWorkers      int
	ExportMaxRecords int
	CORSOrigins      []string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func Load() (Config, error) {
	// Optional .env for local runs; real environments set vars directly.
	_ = godotenv.Load()

	cfg := Config{
		Env:              getenv("APP_ENV", "development"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		OllamaURL:        getenv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      getenv("OLLAMA_MODEL", "llama3:8b"),
		OllamaTimeout:    time.Duration(getenvInt("OLLAMA_TIMEOUT", 60)) * time.Second,
		OllamaMaxRetries: getenvInt("OLLAMA_MAX_RETRIES", 3),
		MaxTextLength:    getenvInt("MAX_TEXT_LENGTH", 2000),
		SyncWorkers:      getenvInt("SYNC_WORKERS", 0),
		ExportMaxRecords: getenvInt("EXPORT_MAX_RECORDS", 10000),
		CORSOrigins:      splitOrigins(getenv("CORS_ORIGINS", "*")),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func splitOrigins(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
