package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Events   EventsConfig   `mapstructure:"events"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite or mysql
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type EventsConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

type AnalysisConfig struct {
	TopN int `mapstructure:"top_n"`
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "orderdesk.db")
	v.SetDefault("db.maxOpenConns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "orderdesk.events")
	v.SetDefault("events.client_id", "orderdesk")
	v.SetDefault("analysis.top_n", 5)
}

// LoadConfig loads configuration from config.yaml and environment variables.
// An explicit path wins over the search locations. A missing config file is
// fine: defaults and ORDERDESK_* variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("$HOME/.orderdesk/")
		v.AddConfigPath("/etc/orderdesk/")
	}

	// ORDERDESK_DB_DSN overrides db.dsn
	v.SetEnvPrefix("ORDERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unsupported db driver: %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return errors.New("events.brokers is required when events are enabled")
	}
	if c.Analysis.TopN <= 0 {
		return fmt.Errorf("analysis.top_n must be positive, got %d", c.Analysis.TopN)
	}
	return nil
}
