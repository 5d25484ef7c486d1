package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     int
	ServiceName    string
	ServiceVersion string
	Database       DatabaseConfig
	Auth           AuthConfig
	Events         EventsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type AuthConfig struct {
	// SecretKey signs all issued tokens. Rotating it invalidates every
	// outstanding token.
	SecretKey string

	// TokenTTLMinutes is the access token lifetime in minutes.
	TokenTTLMinutes int
}

type EventsConfig struct {
	// Backend selects the broker: "rabbitmq", "pubsub", or empty to
	// disable event publishing.
	Backend string
	Topic   string

	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL string
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

// Load reads configuration from the environment. Missing required values
// are a startup error.
func Load() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	cfg := Config{
		ServerPort:     getEnvInt("SERVER_PORT", 8080),
		ServiceName:    getEnv("PROJECT_NAME", "Todos Backend"),
		ServiceVersion: getEnv("APP_VERSION", "0.0.1"),
		Database: DatabaseConfig{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			UseSSL:   os.Getenv("POSTGRES_SSL") == "true",
		},
		Auth: AuthConfig{
			SecretKey:       os.Getenv("AUTH_SECRET_KEY"),
			TokenTTLMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 1440),
		},
		Events: EventsConfig{
			Backend: os.Getenv("EVENTS_BACKEND"),
			Topic:   getEnv("EVENTS_TOPIC", "task-events"),
			RabbitMQ: RabbitMQConfig{
				URL: os.Getenv("RABBITMQ_URL"),
			},
			PubSub: PubSubConfig{
				ProjectID:       os.Getenv("PUBSUB_PROJECT_ID"),
				CredentialsFile: os.Getenv("PUBSUB_CREDENTIALS_FILE"),
			},
		},
	}

	for key, value := range map[string]string{
		"POSTGRES_HOST":     cfg.Database.Host,
		"POSTGRES_USER":     cfg.Database.User,
		"POSTGRES_PASSWORD": cfg.Database.Password,
		"POSTGRES_DB":       cfg.Database.DBName,
		"AUTH_SECRET_KEY":   cfg.Auth.SecretKey,
	} {
		if value == "" {
			return Config{}, fmt.Errorf("%s is required", key)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to the default on a malformed value rather than
// propagating a zero; a zero token TTL would issue tokens born expired.
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.Atoi(valueStr)
		if err != nil || value <= 0 {
			return defaultValue
		}
		return value
	}
	return defaultValue
}
