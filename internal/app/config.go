package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StorageDriver выбирает реализацию хранилища посылок.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// APIAddr — адрес HTTP API сервиса.
	APIAddr string
	// MetricsAddr — адрес служебного HTTP-сервера (/metrics, /healthz).
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// TokenSecret подписывает токены доступа. Если не задан, берётся
	// секрет ленты (оба исторически жили в одном ключе).
	TokenSecret string
	// TokenTTL — срок жизни токена; 0 означает бессрочные токены.
	TokenTTL time.Duration

	// FeedAPIURL/FeedAPIKey/FeedAPISecret — доступ к HTTP-ленте активности.
	FeedAPIURL    string
	FeedAPIKey    string
	FeedAPISecret string
	// FeedKafkaBrokers — альтернативный транспорт ленты через Kafka.
	// Непустой список имеет приоритет над HTTP-лентой.
	FeedKafkaBrokers []string

	// ActivityObject — объект событий активности.
	ActivityObject string
	// ActivityAllowlist включает фильтрацию полей события обновления
	// до известных полей посылки.
	ActivityAllowlist bool
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		APIAddr:             ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
	}
}

// FromEnv собирает конфигурацию из окружения поверх DefaultConfig.
// Ключи STREAM_API_KEY и STREAM_SECRET_KEY поддерживаются как
// исторические синонимы SHIPTRACK_FEED_API_KEY / SHIPTRACK_FEED_API_SECRET.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_API_ADDR")); v != "" {
		cfg.APIAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_STORAGE_DRIVER")); v != "" {
		cfg.StorageDriver = StorageDriver(v)
	}
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_POSTGRES_DSN")); v != "" {
		cfg.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_POSTGRES_AUTO_MIGRATE")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	cfg.FeedAPIURL = strings.TrimSpace(os.Getenv("SHIPTRACK_FEED_API_URL"))
	cfg.FeedAPIKey = firstEnv("SHIPTRACK_FEED_API_KEY", "STREAM_API_KEY")
	cfg.FeedAPISecret = firstEnv("SHIPTRACK_FEED_API_SECRET", "STREAM_SECRET_KEY")
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_FEED_KAFKA_BROKERS")); v != "" {
		cfg.FeedKafkaBrokers = splitList(v)
	}

	cfg.TokenSecret = firstEnv("SHIPTRACK_TOKEN_SECRET", "STREAM_SECRET_KEY")
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = cfg.FeedAPISecret
	}
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_TOKEN_TTL")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			cfg.TokenTTL = parsed
		}
	}

	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_ACTIVITY_OBJECT")); v != "" {
		cfg.ActivityObject = v
	}
	if v := strings.TrimSpace(os.Getenv("SHIPTRACK_ACTIVITY_ALLOWLIST")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.ActivityAllowlist = parsed
		}
	}

	return cfg
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
