package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SchedulingConfig struct {
	// BufferMinutes is the minimum gap enforced between appointments
	// of the same dentist. Zero allows back-to-back bookings.
	BufferMinutes       int `mapstructure:"buffer_minutes"`
	StoreTimeoutSeconds int `mapstructure:"store_timeout_seconds"`
}

func (c SchedulingConfig) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

type OutboxConfig struct {
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
	BatchSize           int `mapstructure:"batch_size"`
	MaxRetries          int `mapstructure:"max_retries"`
}

func (c OutboxConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// envOverrides carries the secrets that must never live in the config
// file. Anything set in the environment wins over the YAML value.
type envOverrides struct {
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("scheduler", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.DatabasePassword != "" {
		config.Database.Password = env.DatabasePassword
	}
	if env.RedisPassword != "" {
		config.Redis.Password = env.RedisPassword
	}
	if env.SMTPPassword != "" {
		config.SMTP.Password = env.SMTPPassword
	}

	return &config, nil
}
