package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Log          LogConfig
	Order        OrderConfig
	Notification NotificationConfig
}

type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	Migrate         bool
}

type LogConfig struct {
	Level  string
	Format string
}

type OrderConfig struct {
	StoreTimeout time.Duration
}

type NotificationConfig struct {
	Mode       string
	URL        string
	Timeout    time.Duration
	MinLatency time.Duration
	MaxLatency time.Duration
	MaxRetries uint64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "coffeeshop")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "coffeeshop")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("DB_MIGRATE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ORDER_STORE_TIMEOUT", "3s")
	v.SetDefault("NOTIFICATION_MODE", "simulated")
	v.SetDefault("NOTIFICATION_URL", "")
	v.SetDefault("NOTIFICATION_TIMEOUT", "5s")
	v.SetDefault("NOTIFICATION_MIN_LATENCY", "100ms")
	v.SetDefault("NOTIFICATION_MAX_LATENCY", "1s")
	v.SetDefault("NOTIFICATION_MAX_RETRIES", 3)
}

func fromViper(v *viper.Viper) (*Config, error) {
	durations := map[string]*time.Duration{}
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			Migrate:      v.GetBool("DB_MIGRATE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Notification: NotificationConfig{
			Mode:       v.GetString("NOTIFICATION_MODE"),
			URL:        v.GetString("NOTIFICATION_URL"),
			MaxRetries: v.GetUint64("NOTIFICATION_MAX_RETRIES"),
		},
	}

	durations["SERVER_REQUEST_TIMEOUT"] = &cfg.Server.RequestTimeout
	durations["DB_CONN_MAX_LIFETIME"] = &cfg.Database.ConnMaxLifetime
	durations["DB_CONNECT_TIMEOUT"] = &cfg.Database.ConnectTimeout
	durations["ORDER_STORE_TIMEOUT"] = &cfg.Order.StoreTimeout
	durations["NOTIFICATION_TIMEOUT"] = &cfg.Notification.Timeout
	durations["NOTIFICATION_MIN_LATENCY"] = &cfg.Notification.MinLatency
	durations["NOTIFICATION_MAX_LATENCY"] = &cfg.Notification.MaxLatency

	for key, dst := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("SERVER_REQUEST_TIMEOUT must be positive"))
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS"))
	}
	if c.Order.StoreTimeout <= 0 {
		errs = append(errs, errors.New("ORDER_STORE_TIMEOUT must be positive"))
	}
	if c.Notification.Timeout <= 0 {
		errs = append(errs, errors.New("NOTIFICATION_TIMEOUT must be positive"))
	}
	if c.Notification.MinLatency < 0 || c.Notification.MaxLatency < c.Notification.MinLatency {
		errs = append(errs, errors.New("NOTIFICATION_MIN_LATENCY must be >= 0 and <= NOTIFICATION_MAX_LATENCY"))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format))
	}
	switch c.Notification.Mode {
	case "simulated":
	case "http":
		if c.Notification.URL == "" {
			errs = append(errs, errors.New("NOTIFICATION_URL is required when NOTIFICATION_MODE=http"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFICATION_MODE %q", c.Notification.Mode))
	}

	return errors.Join(errs...)
}
