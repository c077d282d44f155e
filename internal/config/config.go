package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server    ServerConfig     `toml:"server"`
	Database  DatabaseConfig   `toml:"database"`
	Logs      LogsConfig       `toml:"logs"`
	Metrics   MetricsConfig    `toml:"metrics"`
	Redis     RedisConfig      `toml:"redis"`
	Kafka     KafkaConfig      `toml:"kafka"`
	Payments  PaymentsConfig   `toml:"payments"`
	Providers []ProviderConfig `toml:"providers"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig настройки кеша доступности
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// KafkaConfig настройки публикации lifecycle-событий
type KafkaConfig struct {
	Enabled          bool   `toml:"enabled"`
	Brokers          string `toml:"brokers"`
	PollEverySeconds int    `toml:"poll_every_seconds"`
	BatchSize        int    `toml:"batch_size"`
}

// PaymentsConfig настройки платежного коллаборатора (возвраты)
type PaymentsConfig struct {
	Enabled      bool   `toml:"enabled"`
	StripeAPIKey string `toml:"stripe_api_key"`
}

// ProviderConfig описание бронируемого ресурса (диджей или фотобудка)
// Провайдеры конфигурируются, а не создаются через API
type ProviderConfig struct {
	ID         string  `toml:"id"`
	Type       string  `toml:"type"`
	Name       string  `toml:"name"`
	HourlyRate float64 `toml:"hourly_rate"`
	DailyRate  float64 `toml:"daily_rate"`
}

// Load загружает и валидирует конфигурацию из toml-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return errors.New("config: server.http_port must be positive")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("config: database.host and database.dbname are required")
	}
	if len(c.Providers) == 0 {
		return errors.New("config: at least one provider must be configured")
	}
	for _, p := range c.Providers {
		if p.ID == "" || p.Type == "" {
			return fmt.Errorf("config: provider entry with empty id or type")
		}
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return errors.New("config: metrics.path is required when metrics are enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Brokers == "" {
		return errors.New("config: kafka.brokers is required when kafka is enabled")
	}
	if c.Payments.Enabled && c.Payments.StripeAPIKey == "" {
		return errors.New("config: payments.stripe_api_key is required when payments are enabled")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 15
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "booking-engine"
	}
	if c.Redis.TTLSeconds <= 0 {
		c.Redis.TTLSeconds = 300
	}
	if c.Kafka.PollEverySeconds <= 0 {
		c.Kafka.PollEverySeconds = 2
	}
	if c.Kafka.BatchSize <= 0 {
		c.Kafka.BatchSize = 50
	}
}
