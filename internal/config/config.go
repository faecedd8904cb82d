package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CONFIG_FILE"

// Config defines the ledger service configuration. Values come from an
// optional YAML file named by CONFIG_FILE, overridden by environment
// variables.
type Config struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		TTLSeconds int    `yaml:"ttlSeconds"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`
	Ledger struct {
		Owner string `yaml:"owner"`
	} `yaml:"ledger"`
}

// Load reads, overrides and validates the configuration.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTLSeconds = 86400

	if path := os.Getenv(configPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	overrideString(&cfg.HTTP.Port, "LEDGER_HTTP_PORT")
	overrideString(&cfg.Database.DSN, "LEDGER_POSTGRES_DSN")
	overrideString(&cfg.Redis.Addr, "LEDGER_REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "LEDGER_REDIS_PASSWORD")
	overrideString(&cfg.Auth.JWTSecret, "LEDGER_JWT_SECRET")
	overrideString(&cfg.Ledger.Owner, "LEDGER_OWNER")
	if err := overrideInt(&cfg.Redis.TTLSeconds, "LEDGER_REDIS_TTL"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if strings.TrimSpace(cfg.Ledger.Owner) == "" {
		return nil, errors.New("config: ledger owner required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// MirrorTTL returns the Redis entry lifetime as a duration.
func (c *Config) MirrorTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

func overrideString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		*target = val
	}
}

func overrideInt(target *int, key string) error {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = parsed
	return nil
}
