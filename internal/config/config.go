package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	API struct {
		Port     string
		BasePath string
	}
	Store struct {
		Backend  string // "memory" or "postgres"
		DSN      string
		Capacity int
		Timeout  time.Duration
	}
	Query struct {
		DefaultLimit int
		MaxLimit     int
	}
	Poll struct {
		Interval     time.Duration
		FetchLimit   int
		HistoryLimit int
	}
	Liveness struct {
		OfflineThreshold   time.Duration
		ConnectedThreshold time.Duration
	}
	Alerting struct {
		DebounceWindow time.Duration
		HistoryDisplay int
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Telegram struct {
		BotToken      string
		ChatID        int64
		RatePerSecond int
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Store settings
	cfg.Store.Backend = os.Getenv("STORE_BACKEND")
	cfg.Store.DSN = os.Getenv("DB_DSN")
	cfg.Store.Capacity = intEnv("HISTORY_CAPACITY", 500)
	cfg.Store.Timeout = durationEnv("STORE_TIMEOUT", 3*time.Second)

	// Query settings
	cfg.Query.DefaultLimit = intEnv("QUERY_DEFAULT_LIMIT", 100)
	cfg.Query.MaxLimit = intEnv("QUERY_MAX_LIMIT", 500)

	// Polling settings
	cfg.Poll.Interval = durationEnv("POLL_INTERVAL", 2*time.Second)
	cfg.Poll.FetchLimit = intEnv("POLL_FETCH_LIMIT", 100)
	cfg.Poll.HistoryLimit = intEnv("POLL_HISTORY_LIMIT", 100)

	// Liveness thresholds. The per-channel offline cutoff is looser than the
	// aggregate "connected" indicator on purpose.
	cfg.Liveness.OfflineThreshold = durationEnv("OFFLINE_THRESHOLD", 15*time.Second)
	cfg.Liveness.ConnectedThreshold = durationEnv("CONNECTED_THRESHOLD", 10*time.Second)

	// Alerting settings
	cfg.Alerting.DebounceWindow = durationEnv("DEBOUNCE_WINDOW", 10*time.Second)
	cfg.Alerting.HistoryDisplay = intEnv("ALERT_HISTORY_DISPLAY", 10)

	// Kafka settings (consumer disabled when broker unset)
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Telegram settings (provider disabled when token unset)
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	cfg.Telegram.RatePerSecond = intEnv("TELEGRAM_RATE_LIMIT", 1)

	// Logging settings
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.Store.Backend == "postgres" && cfg.Store.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		missing = append(missing, "KAFKA_TOPIC")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "telemetry-service"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

func intEnv(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
