package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures top-level service configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// CollectTimeout bounds how long the scoring orchestrator waits for
	// borrower data sources before a recompute fails as a whole.
	CollectTimeout time.Duration

	// StaleAfter controls when a stored score snapshot is reported as stale.
	StaleAfter time.Duration

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig holds the relational store settings.
// An empty DSN means the service runs on in-memory stores.
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds connection settings for the Redis-backed adapters
// (reputation lookups and the duplicate document index).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for publishing score-changed notifications.
// Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("NEXOLEND_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("KAFKA_SCORE_TOPIC")
	if topic == "" {
		topic = "nexolend.score-changed"
	}

	return Server{
		Addr:           addr,
		JWTSigningKey:  jwtSigningKey,
		CollectTimeout: durationEnv("SCORE_COLLECT_TIMEOUT", 5*time.Second),
		StaleAfter:     durationEnv("SCORE_STALE_AFTER", 30*24*time.Hour),
		Postgres: PostgresConfig{
			DSN:          os.Getenv("POSTGRES_DSN"),
			MaxOpenConns: intEnv("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns: intEnv("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
