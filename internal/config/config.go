package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the relay service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// WhatsApp Cloud API.
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppAPIBaseURL    string
	VerifyToken           string
	MaxMessageChars       int
	ChunkDelay            time.Duration

	// AI providers.
	GeminiAPIKey     string
	GeminiModel      string
	GroqAPIKey       string
	GroqModel        string
	PerplexityAPIKey string
	PerplexityModel  string

	// Translation.
	TranslateBaseURL string

	// Conversation store.
	DatabaseURL  string
	HistoryLimit int

	// Dispatch.
	WorkerCount int
	QueueSize   int

	// Strategy rules override (yaml). Empty means built-in defaults.
	StrategyRulesPath string

	// Broadcast recipient for cmd/broadcast.
	BroadcastRecipient string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:              bindAddrFromEnv(),
		MetricsNamespace:      envOrDefault("APP_METRICS_NAMESPACE", "sehat"),
		WhatsAppToken:         envTrimmed("WHATSAPP_TOKEN"),
		WhatsAppPhoneNumberID: envTrimmed("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppAPIBaseURL:    envOrDefault("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v18.0"),
		VerifyToken:           envOrDefault("VERIFY_TOKEN", "health_bot_verify_token_2024"),
		GeminiAPIKey:          envTrimmed("GEMINI_API_KEY"),
		GeminiModel:           envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GroqAPIKey:            envTrimmed("GROQ_API_KEY"),
		GroqModel:             envOrDefault("GROQ_MODEL", "llama-3.1-70b-versatile"),
		PerplexityAPIKey:      envTrimmed("PERPLEXITY_API_KEY"),
		PerplexityModel:       envOrDefault("PERPLEXITY_MODEL", "llama-3.1-sonar-small-128k-online"),
		TranslateBaseURL:      envOrDefault("TRANSLATE_BASE_URL", "https://translate.googleapis.com"),
		DatabaseURL:           envOrDefault("DATABASE_URL", "sqlite://health_bot.db"),
		StrategyRulesPath:     envTrimmed("STRATEGY_RULES_PATH"),
		BroadcastRecipient:    envTrimmed("BROADCAST_RECIPIENT"),
		ShutdownTimeout:       15 * time.Second,
		MaxMessageChars:       4096,
		ChunkDelay:            time.Second,
		HistoryLimit:          30,
		WorkerCount:           8,
		QueueSize:             1024,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ChunkDelay, err = durationFromEnv("WHATSAPP_CHUNK_DELAY", cfg.ChunkDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxMessageChars, err = intFromEnv("WHATSAPP_MAX_MESSAGE_CHARS", cfg.MaxMessageChars)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryLimit, err = intFromEnv("HISTORY_LIMIT", cfg.HistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.WorkerCount, err = intFromEnv("WORKER_COUNT", cfg.WorkerCount)
	if err != nil {
		return Config{}, err
	}
	cfg.QueueSize, err = intFromEnv("QUEUE_SIZE", cfg.QueueSize)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxMessageChars <= 0 {
		return Config{}, fmt.Errorf("WHATSAPP_MAX_MESSAGE_CHARS must be positive")
	}
	if cfg.ChunkDelay < 0 {
		return Config{}, fmt.Errorf("WHATSAPP_CHUNK_DELAY must not be negative")
	}
	if cfg.HistoryLimit <= 0 {
		return Config{}, fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if cfg.WorkerCount <= 0 {
		return Config{}, fmt.Errorf("WORKER_COUNT must be positive")
	}
	if cfg.QueueSize <= 0 {
		return Config{}, fmt.Errorf("QUEUE_SIZE must be positive")
	}

	return cfg, nil
}

// bindAddrFromEnv honors APP_BIND_ADDR, falling back to the platform PORT
// variable used by the hosting environment.
func bindAddrFromEnv() string {
	if addr := envTrimmed("APP_BIND_ADDR"); addr != "" {
		return addr
	}
	if port := envTrimmed("PORT"); port != "" {
		return ":" + port
	}
	return ":5000"
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
