package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
	"todoBot/internal/models/task"

	"github.com/spf13/viper"
)

const EnvPrefix = "TODOBOT"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Numbering  NumberingConfig  `mapstructure:"numbering"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Probe      ProbeConfig      `mapstructure:"probe"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ConnectRetries uint64        `mapstructure:"connect_retries"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "postgres" или "inmemory"
}

type NumberingConfig struct {
	Mode string `mapstructure:"mode"` // "dense", "stable" или "raw"
}

type RateLimitConfig struct {
	RPM int `mapstructure:"rpm"`
}

type ProbeConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", "inmemory")
	v.SetDefault("numbering.mode", string(task.NumberingDense))
	v.SetDefault("rate_limit.rpm", 60)
	v.SetDefault("probe.interval", 30*time.Second)
}

// Load читает конфиг из файла (если путь задан) и переменных окружения TODOBOT_*.
// Пустой путь - только значения по умолчанию и окружение.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("не могу прочитать %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Repository.Type {
	case "inmemory":
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url обязателен для repository.type=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный repository.type %q", c.Repository.Type))
	}

	if _, err := task.ParseNumbering(c.Numbering.Mode); err != nil {
		errs = append(errs, err)
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("неверный server.port %q", c.Server.Port))
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		errs = append(errs, errors.New("database.min_connections больше max_connections"))
	}

	return errors.Join(errs...)
}

func (c *Config) NumberingMode() task.Numbering {
	mode, _ := task.ParseNumbering(c.Numbering.Mode)
	return mode
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
