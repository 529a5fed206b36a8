package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// KafkaConfig holds broker and topic configuration.
type KafkaConfig struct {
	Brokers              []string `yaml:"brokers"`
	EventsTopic          string   `yaml:"events_topic"`
	CustomerUpdatesTopic string   `yaml:"customer_updates_topic"`
	ConsumerGroup        string   `yaml:"consumer_group"`
}

// Config is the full service configuration. Values come from environment
// variables; an optional YAML file named by ORIGINATION_CONFIG overrides the
// defaults before the environment is applied.
type Config struct {
	GRPCPort    int            `yaml:"grpc_port"`
	HTTPPort    int            `yaml:"http_port"`
	DB          DatabaseConfig `yaml:"db"`
	Kafka       KafkaConfig    `yaml:"kafka"`
	ServiceName string         `yaml:"-"`
}

// Validate panics on configuration that cannot possibly work.
func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, in that order of precedence (environment wins).
func Load() (Config, error) {
	cfg := Config{
		GRPCPort: 9091,
		HTTPPort: 8091,
		DB: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "origination",
			Name:    "pawn_origination",
			SSLMode: "require",
		},
		Kafka: KafkaConfig{
			Brokers:              []string{"localhost:9092"},
			EventsTopic:          "origination.events",
			CustomerUpdatesTopic: "customers.updated",
			ConsumerGroup:        "origination-service",
		},
		ServiceName: "origination-service",
	}

	if path := os.Getenv("ORIGINATION_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.GRPCPort = getEnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnvInt("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", cfg.DB.SSLMode)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = []string{v}
	}
	cfg.Kafka.EventsTopic = getEnv("KAFKA_EVENTS_TOPIC", cfg.Kafka.EventsTopic)
	cfg.Kafka.CustomerUpdatesTopic = getEnv("KAFKA_CUSTOMER_UPDATES_TOPIC", cfg.Kafka.CustomerUpdatesTopic)
	cfg.Kafka.ConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", cfg.Kafka.ConsumerGroup)

	return cfg, nil
}

// GRPCAddr returns the listen address for the gRPC server.
func (c Config) GRPCAddr() string { return fmt.Sprintf(":%d", c.GRPCPort) }

// HTTPAddr returns the listen address for the HTTP server.
func (c Config) HTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
