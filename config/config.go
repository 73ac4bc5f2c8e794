// Package config loads service configuration from the environment and
// builds the shared logger and database client.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	postgrest "github.com/supabase-community/postgrest-go"
)

// Config holds everything the service reads from the environment. Only the
// Supabase pair and the Gemini key are required; the rest has defaults
// suitable for local development.
type Config struct {
	ListenAddr string

	SupabaseURL string
	SupabaseKey string

	GeminiAPIKey string
	GeminiModel  string

	ClipsDir string

	Workers      int
	JobQueueSize int

	DownloadTimeout  time.Duration
	TranscodeTimeout time.Duration

	LogLevel string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// .env is a development convenience; in deployment the variables come
	// from the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:       envOr("LISTEN_ADDR", ":8080"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_SERVICE_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		ClipsDir:         envOr("CLIPS_DIR", "./media/clips"),
		Workers:          envInt("WORKERS", 4),
		JobQueueSize:     envInt("JOB_QUEUE_SIZE", 64),
		DownloadTimeout:  envDuration("DOWNLOAD_TIMEOUT", 5*time.Minute),
		TranscodeTimeout: envDuration("TRANSCODE_TIMEOUT", 10*time.Minute),
		LogLevel:         envOr("LOG_LEVEL", "info"),
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	return cfg, nil
}

// NewPostgrestClient builds the PostgREST client for the configured
// Supabase project.
func (c *Config) NewPostgrestClient() (*postgrest.Client, error) {
	client := postgrest.NewClient(c.SupabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        c.SupabaseKey,
		"Authorization": "Bearer " + c.SupabaseKey,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("initializing database client: %w", client.ClientError)
	}
	return client, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
