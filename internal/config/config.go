package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StorageMongo  = "mongo"
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	Storage  StorageConfig  `toml:"storage"`
	Mongo    MongoConfig    `toml:"mongo"`
	MySQL    MySQLConfig    `toml:"mysql"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Gravatar GravatarConfig `toml:"gravatar"`
}

type AppConfig struct {
	Name     string `toml:"name"`
	Env      string `toml:"env"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	GinMode  string `toml:"gin_mode"`
	LogLevel string `toml:"log_level"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

// StorageConfig selects the user store backend.
type StorageConfig struct {
	Driver string `toml:"driver"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

// RabbitMQConfig configures user lifecycle events. An empty URL disables
// publishing and the gravatar worker.
type RabbitMQConfig struct {
	URL                string `toml:"url"`
	UserEventsExchange string `toml:"user_events_exchange"`
	GravatarQueue      string `toml:"gravatar_queue"`
}

type GravatarConfig struct {
	BaseURL             string `toml:"base_url"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
}

func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load(getEnv("DOTENV_FILE", ".env"))

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.Auth.JWTExpireMinute <= 0 {
		return errors.New("auth.jwt_expire_minute must be positive")
	}
	switch c.Storage.Driver {
	case StorageMongo, StorageMySQL, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func (c *Config) EventsEnabled() bool {
	return strings.TrimSpace(c.RabbitMQ.URL) != ""
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "profilehub",
			Env:      "dev",
			Host:     "0.0.0.0",
			Port:     8080,
			GinMode:  "debug",
			LogLevel: "info",
		},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 60,
		},
		Storage: StorageConfig{
			Driver: StorageMongo,
		},
		Mongo: MongoConfig{
			URI:        "mongodb://127.0.0.1:27017",
			Database:   "profilehub",
			Collection: "users",
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "profilehub",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		RabbitMQ: RabbitMQConfig{
			URL:                "",
			UserEventsExchange: "profilehub.users",
			GravatarQueue:      "profilehub.gravatar",
		},
		Gravatar: GravatarConfig{
			BaseURL:             "https://www.gravatar.com/avatar/",
			ProbeTimeoutSeconds: 5,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	// PORT is what most hosting platforms inject.
	cfg.App.Port = getEnvAsInt("PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)

	// jwtkey is the variable name used by existing deployments.
	cfg.Auth.JWTSecret = getEnv("jwtkey", cfg.Auth.JWTSecret)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.Storage.Driver))

	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("MONGO_DATABASE", cfg.Mongo.Database)
	cfg.Mongo.Collection = getEnv("MONGO_COLLECTION", cfg.Mongo.Collection)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.UserEventsExchange = getEnv("RABBITMQ_USER_EVENTS_EXCHANGE", cfg.RabbitMQ.UserEventsExchange)
	cfg.RabbitMQ.GravatarQueue = getEnv("RABBITMQ_GRAVATAR_QUEUE", cfg.RabbitMQ.GravatarQueue)

	cfg.Gravatar.BaseURL = getEnv("GRAVATAR_BASE_URL", cfg.Gravatar.BaseURL)
	cfg.Gravatar.ProbeTimeoutSeconds = getEnvAsInt("GRAVATAR_PROBE_TIMEOUT_SECONDS", cfg.Gravatar.ProbeTimeoutSeconds)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
