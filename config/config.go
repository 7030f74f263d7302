package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/melkeydev/datadesk/databases/engine"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Records  RecordsConfig  `yaml:"records"`
	Log      LogConfig      `yaml:"log"`
	Sentry   SentryConfig   `yaml:"sentry"`
}

type DatabaseConfig struct {
	DBType           string        `yaml:"type"`
	ConnectionString string        `yaml:"connection_string,omitempty"`
	File             string        `yaml:"file,omitempty"`
	Host             string        `yaml:"host,omitempty"`
	Port             int           `yaml:"port,omitempty"`
	Name             string        `yaml:"name,omitempty"`
	User             string        `yaml:"user,omitempty"`
	Password         string        `yaml:"password,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	Pool             PoolConfig    `yaml:"pool"`
}

// PoolConfig sizes the connection pool. MaxIdle stays 0 unless set, so no
// connection outlives the operation that opened it.
type PoolConfig struct {
	MaxOpen int `yaml:"max_open"`
	MaxIdle int `yaml:"max_idle"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type RecordsConfig struct {
	Table string `yaml:"table"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Default is the configuration used when no file exists: the local MySQL
// instance on port 3307 with the appweb database.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			DBType:  "mysql",
			Host:    "localhost",
			Port:    3307,
			Name:    "appweb",
			User:    "root",
			Timeout: 10 * time.Second,
			Pool:    PoolConfig{MaxOpen: 4},
		},
		Server:  ServerConfig{Addr: "127.0.0.1:8000"},
		Records: RecordsConfig{Table: "registros"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Sentry:  SentryConfig{Environment: "production"},
	}
}

// LoadConfig reads configPath on top of Default. A missing file is not an
// error.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	config := Default()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

func (d *DatabaseConfig) PoolOptions() engine.PoolOptions {
	return engine.PoolOptions{MaxOpen: d.Pool.MaxOpen, MaxIdle: d.Pool.MaxIdle}
}

// GetConnectionString returns the DSN for the configured store. An explicit
// connection_string wins over the individual fields.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	switch d.DBType {
	case "mysql":
		if d.ConnectionString != "" {
			return d.ConnectionString, nil
		}
		if d.Name == "" {
			return "", fmt.Errorf("database name is required for %s connection", d.DBType)
		}

		cfg := mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = d.address(3306)
		cfg.DBName = d.Name
		cfg.ParseTime = true
		if d.Timeout > 0 {
			cfg.Timeout = d.Timeout
		}
		return cfg.FormatDSN(), nil

	case "postgres":
		if d.ConnectionString != "" {
			return d.ConnectionString, nil
		}
		if d.Name == "" {
			return "", fmt.Errorf("database name is required for %s connection", d.DBType)
		}

		u := url.URL{
			Scheme: "postgres",
			Host:   d.address(5432),
			Path:   "/" + d.Name,
		}
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else if d.User != "" {
			u.User = url.User(d.User)
		}
		if d.Timeout > 0 {
			u.RawQuery = url.Values{"connect_timeout": {strconv.Itoa(int(d.Timeout.Seconds()))}}.Encode()
		}
		return u.String(), nil

	case "sqlite":
		if d.ConnectionString != "" {
			return d.ConnectionString, nil
		}
		if d.File == "" {
			d.File = "database.db"
		}
		return d.File, nil

	default:
		return "", fmt.Errorf("unsupported Database type: %s", d.DBType)
	}
}

func (d *DatabaseConfig) address(defaultPort int) string {
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	port := d.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
