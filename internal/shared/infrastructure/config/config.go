package config

import (
	"os"
	"time"

	"github.com/studypulse/notify-engine/internal/shared/infrastructure/database"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database database.PostgresConfig
	Redis    database.RedisConfig
	JWT      JWTConfig
	Push     PushConfig
	Kafka    KafkaConfig
	Reaper   ReaperConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// PushConfig holds push gateway configuration
type PushConfig struct {
	Endpoint    string
	APIKey      string
	SendTimeout time.Duration
}

// KafkaConfig holds producer-event ingestion configuration. Empty brokers
// disable the consumer.
type KafkaConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// ReaperConfig holds the expired-notification reaper configuration
type ReaperConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:4200"),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "notify"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: database.RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-dev-secret"),
		},
		Push: PushConfig{
			Endpoint:    getEnv("PUSH_GATEWAY_URL", ""),
			APIKey:      getEnv("PUSH_GATEWAY_KEY", ""),
			SendTimeout: parseDuration(getEnv("PUSH_SEND_TIMEOUT", "5s"), 5*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getEnv("KAFKA_BROKERS", ""),
			Topic:   getEnv("KAFKA_TOPIC", "notification-events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "notify-engine"),
		},
		Reaper: ReaperConfig{
			Interval: parseDuration(getEnv("REAPER_INTERVAL", "1h"), time.Hour),
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
