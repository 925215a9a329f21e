// Package config loads the storefront service configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Document store backends.
const (
	DocstoreMemory   = "memory"
	DocstoreDynamoDB = "dynamodb"
)

type Config struct {
	Port             string        `envconfig:"PORT" default:"50210"`
	AdminPort        string        `envconfig:"ADMIN_PORT" default:"8080"`
	DataDir          string        `envconfig:"DATA_DIR" default:"./data"`
	Docstore         string        `envconfig:"DOCSTORE" default:"memory"`
	AWSRegion        string        `envconfig:"AWS_REGION" default:"ap-south-1"`
	DynamoDBTable    string        `envconfig:"DYNAMODB_TABLE" default:"storefront"`
	DynamoDBEndpoint string        `envconfig:"DYNAMODB_ENDPOINT" default:""`
	KafkaBrokers     []string      `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic       string        `envconfig:"KAFKA_TOPIC" default:"storefront-order-messages"`
	WhatsAppNumber   string        `envconfig:"WHATSAPP_NUMBER" default:"919876543210"`
	RemoteTimeout    time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`
	CatalogCacheTTL  time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"30m"`
	SessionCapacity  int           `envconfig:"SESSION_CAPACITY" default:"1024"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	Timezone         string        `envconfig:"TIMEZONE" default:"Asia/Kolkata"`
}

// Load reads the configuration from the environment. When envFile is set
// it is loaded first; variables already in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Docstore {
	case DocstoreMemory, DocstoreDynamoDB:
	default:
		return fmt.Errorf("DOCSTORE must be %q or %q, got %q", DocstoreMemory, DocstoreDynamoDB, c.Docstore)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("SESSION_CAPACITY must be positive, got %d", c.SessionCapacity)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", c.RemoteTimeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}

// NewLogger builds a production zap logger at LogLevel.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
