// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	strs "discordcore/pkg/platform/strings"
)

// Config holds all configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	Discord DiscordConfig
	Cache   CacheConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Resolve ResolveConfig
	Log     LogConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `envconfig:"SERVER_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// DiscordConfig configures the REST client.
type DiscordConfig struct {
	Token             string        `envconfig:"DISCORD_TOKEN" required:"true"`
	BaseURL           string        `envconfig:"DISCORD_API_URL" default:"https://discord.com/api/v10"`
	UserAgent         string        `envconfig:"DISCORD_USER_AGENT"`
	Timeout           time.Duration `envconfig:"DISCORD_TIMEOUT" default:"10s"`
	RequestsPerSecond float64       `envconfig:"DISCORD_REQUESTS_PER_SECOND" default:"40"`
	Burst             int           `envconfig:"DISCORD_BURST" default:"10"`
	MaxRetries        uint64        `envconfig:"DISCORD_MAX_RETRIES" default:"3"`
}

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig selects the entity store.
type CacheConfig struct {
	Backend       string        `envconfig:"CACHE_BACKEND" default:"memory"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	KeyPrefix     string        `envconfig:"CACHE_KEY_PREFIX" default:"discordcore:entity"`
	SweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"1m"`
}

// RedisConfig configures the shared Redis connection.
type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// KafkaConfig configures cache priming from gateway events. Priming is off
// when no brokers are set.
type KafkaConfig struct {
	Brokers           []string `envconfig:"KAFKA_BROKERS"`
	GroupID           string   `envconfig:"KAFKA_GROUP_ID" default:"discordcore"`
	Topic             string   `envconfig:"KAFKA_TOPIC" default:"discord.entities"`
	CreateTopics      bool     `envconfig:"KAFKA_CREATE_TOPICS" default:"false"`
	Partitions        int32    `envconfig:"KAFKA_PARTITIONS" default:"3"`
	ReplicationFactor int16    `envconfig:"KAFKA_REPLICATION_FACTOR" default:"1"`
}

// Enabled reports whether priming should run.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// ResolveConfig tunes the resolution context.
type ResolveConfig struct {
	FetchTimeout time.Duration `envconfig:"RESOLVE_FETCH_TIMEOUT" default:"30s"`
	Concurrency  int           `envconfig:"RESOLVE_CONCURRENCY" default:"8"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Kafka.Brokers = strs.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	var errs []error
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("CACHE_BACKEND=redis requires REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL must not be negative"))
	}
	if c.Resolve.Concurrency < 1 {
		errs = append(errs, errors.New("RESOLVE_CONCURRENCY must be at least 1"))
	}
	if c.Discord.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("DISCORD_REQUESTS_PER_SECOND must not be negative"))
	}
	return errors.Join(errs...)
}
