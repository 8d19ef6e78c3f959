package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	SeedFile        string        `mapstructure:"SEED_FILE"`
	RandomSeed      uint64        `mapstructure:"RANDOM_SEED"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisTTL        time.Duration `mapstructure:"REDIS_TTL"`
	MQTTBroker      string        `mapstructure:"MQTT_BROKER"`
	MQTTClientID    string        `mapstructure:"MQTT_CLIENT_ID"`
	MQTTTopicPrefix string        `mapstructure:"MQTT_TOPIC_PREFIX"`
	MDNSLocalName   string        `mapstructure:"MDNS_LOCAL_NAME"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	APIBaseURL      string        `mapstructure:"API_BASE_URL"`
}

var defaults = map[string]interface{}{
	"HTTP_ADDR":         ":8080",
	"LOG_LEVEL":         "info",
	"SEED_FILE":         "",
	"RANDOM_SEED":       0,
	"REDIS_ADDR":        "",
	"REDIS_TTL":         "1h",
	"MQTT_BROKER":       "",
	"MQTT_CLIENT_ID":    "energydash",
	"MQTT_TOPIC_PREFIX": "devices",
	"MDNS_LOCAL_NAME":   "",
	"CORS_ORIGINS":      "*",
	"API_BASE_URL":      "http://localhost:8080",
}

// LoadConfig reads configuration from config.yaml, .env and the
// environment, in increasing order of precedence
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return load(".")
}

func load(paths ...string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	if cfg.RedisTTL <= 0 {
		return nil, fmt.Errorf("REDIS_TTL must be positive, got %s", cfg.RedisTTL)
	}
	return cfg, nil
}

// splitList flattens comma separated entries coming from env vars
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
