package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	LogLevel    string
	PostgresDSN string
	RedisAddr   string

	KafkaBrokers     []string
	KafkaOrdersTopic string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration
	OTPEcho              bool

	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	ChatRatePerMinute int

	AdminAPIKey string
	SeedEnabled bool
	CORSOrigins []string
}

// LoadConfig reads environment variables, applies defaults and validates numeric values.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		LogLevel:          envDefault("LOG_LEVEL", "info"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrdersTopic:  envDefault("KAFKA_TOPIC_ORDERS", "orders.events"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		OTPEcho:           isTruthy(os.Getenv("OTP_ECHO")),
		LLMBaseURL:        envDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:         strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		LLMModel:          envDefault("LLM_MODEL", "gpt-4o-mini"),
		AdminAPIKey:       strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		SeedEnabled:       isTruthy(os.Getenv("SEED_ENABLED")),
		CORSOrigins:       splitList(envDefault("CORS_ORIGINS", "*")),
	}

	hours, err := envInt("SESSION_TTL_HOURS", 24, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour

	minutes, err := envInt("SESSION_PURGE_INTERVAL_MINUTES", 0, 0)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionPurgeInterval = time.Duration(minutes) * time.Minute

	if cfg.ChatRatePerMinute, err = envInt("CHAT_RATE_PER_MINUTE", 20, 0); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envInt parses key as an integer no smaller than min, returning fallback when unset.
func envInt(key string, fallback, min int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min {
		return 0, fmt.Errorf("%s must be an integer >= %d, got %q", key, min, raw)
	}
	return value, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
