package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")
	ErrShortJWTSecret   = errors.New("JWT_SECRET must be at least 32 characters long")
)

const minJWTSecretLength = 32

// Config holds the runtime settings shared by cmd/api and cmd/notifier
type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	// MongoURI selects the Mongo-backed stores; empty runs in memory
	MongoURI string
	MongoDB  string

	// RedisAddr enables the cart read cache when set
	RedisAddr    string
	CartCacheTTL time.Duration

	// DatabaseURL selects the Postgres journal; empty keeps it in memory
	DatabaseURL    string
	MigrationsPath string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	JWTSecret string

	PostmarkToken   string
	PostmarkBaseURL string
	EmailFrom       string
}

// Load reads an optional .env file and then the process environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	} else if err == nil {
		log.Println("[Config] Loaded environment file")
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDB:         getEnv("MONGO_DB", "ecommerce"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CartCacheTTL:    getDuration("CART_CACHE_TTL", 5*time.Minute),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "ec-order-events"),
		KafkaGroup:      getEnv("KAFKA_GROUP", "email-notifier"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		PostmarkToken:   os.Getenv("POSTMARK_SERVER_TOKEN"),
		PostmarkBaseURL: os.Getenv("POSTMARK_BASE_URL"),
		EmailFrom:       getEnv("EMAIL_FROM", "noreply@example.com"),
	}
	return cfg, nil
}

// ValidateAPI checks the settings cmd/api cannot start without
func (c *Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return ErrShortJWTSecret
	}
	return nil
}

// KafkaEnabled reports whether journal events should be published
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("[Config] Invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
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
