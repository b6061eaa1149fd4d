package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr    string
	DatabaseURL string

	// External recommendation platform
	RecoAPIURL  string
	RecoAPIKey  string
	RecoTimeout time.Duration

	// Engine / table names on the platform
	ElectionsTable string
	UsersTable     string
	EventsTable    string
	ElectionEngine string

	// Redis & caching (optional: empty REDIS_URL disables caching)
	RedisURL         string
	CacheTTLTrending time.Duration

	// RabbitMQ interaction mirror (optional: empty RABBIT_URL -> noop publisher)
	RabbitURL      string
	RabbitExchange string

	// Sync & buffering
	SyncBatchSize       int
	BufferFlushSize     int
	BufferFlushInterval time.Duration
	BatchTrackChunkSize int

	// Rate limiting for the tracking endpoint
	RLTrackLimit  int
	RLTrackWindow time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8086")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	cfg.RecoAPIURL = getEnv("RECO_API_URL", "")
	cfg.RecoAPIKey = getEnv("RECO_API_KEY", "")
	cfg.RecoTimeout = getDuration("RECO_TIMEOUT", 30*time.Second)

	cfg.ElectionsTable = getEnv("RECO_ELECTIONS_TABLE", "elections")
	cfg.UsersTable = getEnv("RECO_USERS_TABLE", "users")
	cfg.EventsTable = getEnv("RECO_EVENTS_TABLE", "interaction_events")
	cfg.ElectionEngine = getEnv("RECO_ELECTION_ENGINE", "election_recommendations")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.CacheTTLTrending = getDuration("CACHE_TTL_TRENDING", 60*time.Second)

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "reco.interactions")

	cfg.SyncBatchSize = getIntEnv("SYNC_BATCH_SIZE", 1000)
	cfg.BufferFlushSize = getIntEnv("BUFFER_FLUSH_SIZE", 50)
	cfg.BufferFlushInterval = getDuration("BUFFER_FLUSH_INTERVAL", 30*time.Second)
	cfg.BatchTrackChunkSize = getIntEnv("BATCH_TRACK_CHUNK_SIZE", 100)

	// Tracking endpoint defaults: 120 reqs / 1 min per IP
	cfg.RLTrackLimit = getIntEnv("RL_TRACK_LIMIT", 120)
	cfg.RLTrackWindow = getDuration("RL_TRACK_WINDOW", 1*time.Minute)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL")
	}
	if cfg.RecoAPIURL == "" {
		return nil, fmt.Errorf("missing RECO_API_URL")
	}
	if cfg.SyncBatchSize <= 0 {
		return nil, fmt.Errorf("SYNC_BATCH_SIZE must be positive")
	}
	if cfg.BufferFlushSize <= 0 {
		return nil, fmt.Errorf("BUFFER_FLUSH_SIZE must be positive")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
