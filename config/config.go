package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DEFAULT_WATSON_URL      = "https://sn-watson-emotion.labs.skills.network/v1/watson.runtime.nlp.v1/NlpService/EmotionPredict"
	DEFAULT_WATSON_MODEL_ID = "emotion_aggregated-workflow_lang_en_stock"

	// Valkey expiries are set in whole seconds.
	MIN_CACHE_TTL = time.Second
)

// Config holds the application configuration
type Config struct {
	Env      string
	Port     int
	LogLevel slog.Level

	WatsonURL         string
	WatsonModelID     string
	WatsonTimeout     time.Duration
	WatsonMaxAttempts int

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	CacheTTL       time.Duration

	AWSEndpoint   string
	AWSRegion     string
	DynamoDBTable string

	KafkaBroker  string
	KafkaGroupID string
}

// Load reads the configuration from the environment. Call LoadEnv first to
// pull in an env file.
func Load() Config {
	return Config{
		Env:      getEnv("APP_ENV", "dev"),
		Port:     getEnvInt("PORT", 5000),
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),

		WatsonURL:         getEnv("WATSON_URL", DEFAULT_WATSON_URL),
		WatsonModelID:     getEnv("WATSON_MODEL_ID", DEFAULT_WATSON_MODEL_ID),
		WatsonTimeout:     getEnvDuration("WATSON_TIMEOUT", 10*time.Second, time.Millisecond),
		WatsonMaxAttempts: max(getEnvInt("WATSON_MAX_ATTEMPTS", 1), 1),

		ValkeyAddress:  os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:      os.Getenv("VALKEY_TLS") == "true",
		CacheTTL:       getEnvDuration("CACHE_TTL", 24*time.Hour, MIN_CACHE_TTL),

		AWSEndpoint:   os.Getenv("AWS_ENDPOINT"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: os.Getenv("DYNAMODB_TABLE"),

		KafkaBroker:  os.Getenv("KAFKA_BROKER"),
		KafkaGroupID: getEnv("KAFKA_CONSUMER_GROUP_ID", "emotiflow-consumer-group"),
	}
}

func (c Config) CacheEnabled() bool   { return c.ValkeyAddress != "" }
func (c Config) HistoryEnabled() bool { return c.DynamoDBTable != "" }
func (c Config) KafkaEnabled() bool   { return c.KafkaBroker != "" }

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue))
		return defaultValue
	}
	return v
}

// getEnvDuration falls back to defaultValue when the value is unparsable or
// below minValue.
func getEnvDuration(key string, defaultValue, minValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 || d < minValue {
		slog.Warn("[Config] Invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Duration("default", defaultValue))
		return defaultValue
	}
	return d
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
