// Package config loads service configuration from the environment and
// caches remote parameters such as the image CDN base URL.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/petstorecloud/petfood/models"
)

// Config holds the full service configuration. Values resolve in three
// layers: built-in defaults, then PETFOOD_-prefixed environment
// variables, then functional options.
type Config struct {
	FoodsTable       string `json:"foods_table" env:"PETFOOD_FOODS_TABLE" default:"PetFoods"`
	CartsTable       string `json:"carts_table" env:"PETFOOD_CARTS_TABLE" default:"PetFoodCarts"`
	Region           string `json:"region" env:"PETFOOD_AWS_REGION" default:"us-west-2"`
	CDNParameterName string `json:"cdn_parameter_name" env:"PETFOOD_CDN_PARAMETER_NAME" default:"/petstore/imagescdnurl"`
	LogLevel         string `json:"log_level" env:"PETFOOD_LOG_LEVEL" default:"info"`

	Events models.EventConfig `json:"events"`

	Cache CacheConfig `json:"cache"`
}

// CacheConfig controls the parameter cache.
type CacheConfig struct {
	RedisURL string        `json:"redis_url" env:"PETFOOD_REDIS_URL" default:""`
	TTL      time.Duration `json:"ttl" env:"PETFOOD_CACHE_TTL" default:"5m"`
}

// Option mutates the config after defaults and environment are applied.
type Option func(*Config)

// WithTables overrides the table names.
func WithTables(foods, carts string) Option {
	return func(c *Config) {
		c.FoodsTable = foods
		c.CartsTable = carts
	}
}

// WithRegion overrides the AWS region.
func WithRegion(region string) Option {
	return func(c *Config) { c.Region = region }
}

// WithEvents overrides the event publishing config.
func WithEvents(events models.EventConfig) Option {
	return func(c *Config) { c.Events = events }
}

// WithLogLevel overrides the log level.
func WithLogLevel(level string) Option {
	return func(c *Config) { c.LogLevel = level }
}

// Load builds the configuration. A .env file in the working directory
// is read when present; a missing file is not an error.
func Load(opts ...Option) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	applyEnv(cfg)

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		FoodsTable:       "PetFoods",
		CartsTable:       "PetFoodCarts",
		Region:           "us-west-2",
		CDNParameterName: "/petstore/imagescdnurl",
		LogLevel:         "info",
		Events:           models.DefaultEventConfig(),
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.FoodsTable, "PETFOOD_FOODS_TABLE")
	setString(&cfg.CartsTable, "PETFOOD_CARTS_TABLE")
	setString(&cfg.Region, "PETFOOD_AWS_REGION")
	setString(&cfg.CDNParameterName, "PETFOOD_CDN_PARAMETER_NAME")
	setString(&cfg.LogLevel, "PETFOOD_LOG_LEVEL")

	setString(&cfg.Events.BusName, "PETFOOD_EVENTS_BUS_NAME")
	setString(&cfg.Events.Source, "PETFOOD_EVENTS_SOURCE")
	setInt(&cfg.Events.MaxRetries, "PETFOOD_EVENTS_MAX_RETRIES")
	setDuration(&cfg.Events.Timeout, "PETFOOD_EVENTS_TIMEOUT")
	setBool(&cfg.Events.Enabled, "PETFOOD_EVENTS_ENABLED")

	setString(&cfg.Cache.RedisURL, "PETFOOD_REDIS_URL")
	setDuration(&cfg.Cache.TTL, "PETFOOD_CACHE_TTL")
}

func (c *Config) validate() error {
	if c.FoodsTable == "" {
		return fmt.Errorf("foods table name must not be empty")
	}
	if c.CartsTable == "" {
		return fmt.Errorf("carts table name must not be empty")
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("event max retries must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
