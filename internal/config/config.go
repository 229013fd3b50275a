// Package config provides application configuration loaded from environment
// variables and an optional YAML file.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	App      AppConfig      `mapstructure:"app"`
	Session  SessionConfig  `mapstructure:"session"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig selects the driver and its connection settings.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres or sqlite
	DSN      string `mapstructure:"dsn"`    // overrides the discrete postgres fields
	Path     string `mapstructure:"path"`   // sqlite file
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Debug    bool   `mapstructure:"debug"` // log every SQL statement
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if d.DSN != "" {
		return d.DSN
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.DBName,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// AppConfig holds application-level switches.
type AppConfig struct {
	Dev        bool `mapstructure:"dev"`
	Migrations bool `mapstructure:"migrations"`
}

type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// StorageConfig locates uploaded logos.
type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // local or s3
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	Prefix   string `mapstructure:"prefix"`
}

type PDFConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateLayout     string `mapstructure:"date_layout"`
	Compress       bool   `mapstructure:"compress"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	Format     string `mapstructure:"format"`      // json or console
	// Sampling thins out repeated entries (same level and message) after the
	// first 100 per second.
	Sampling bool `mapstructure:"sampling"`
}

// envBindings keeps the short variable names used by deployments.
var envBindings = map[string]string{
	"server.port":          "PORT",
	"server.read_timeout":  "SERVER_READ_TIMEOUT",
	"server.write_timeout": "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":  "SERVER_IDLE_TIMEOUT",
	"database.driver":      "DB_DRIVER",
	"database.dsn":         "DATABASE_DSN",
	"database.path":        "DB_PATH",
	"database.host":        "DB_HOST",
	"database.port":        "DB_PORT",
	"database.user":        "DB_USER",
	"database.password":    "DB_PASSWORD",
	"database.dbname":      "DB_NAME",
	"database.sslmode":     "DB_SSLMODE",
	"database.debug":       "DB_DEBUG",
	"app.dev":              "DEV",
	"app.migrations":       "MIGRATIONS",
	"session.secret":       "SESSION_SECRET",
	"session.ttl":          "SESSION_TTL",
	"storage.driver":       "STORAGE_DRIVER",
	"storage.dir":          "STORAGE_DIR",
	"storage.bucket":       "S3_BUCKET",
	"storage.region":       "AWS_REGION",
	"storage.endpoint":     "S3_ENDPOINT",
	"storage.prefix":       "S3_PREFIX",
	"pdf.currency_symbol":  "PDF_CURRENCY_SYMBOL",
	"pdf.date_layout":      "PDF_DATE_LAYOUT",
	"pdf.compress":         "PDF_COMPRESS",
	"logger.level":         "LOG_LEVEL",
	"logger.output_path":   "LOG_OUTPUT",
	"logger.format":        "LOG_FORMAT",
	"logger.sampling":      "LOG_SAMPLING",
}

// Load reads configuration from the environment and, when path is not empty,
// from a YAML file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.path", "data/billease.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "billease")
	v.SetDefault("database.password", "billease")
	v.SetDefault("database.dbname", "billease")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.debug", false)

	v.SetDefault("app.dev", true)
	v.SetDefault("app.migrations", false)

	v.SetDefault("session.secret", "devsessionsecret")
	v.SetDefault("session.ttl", 14*24*time.Hour)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.prefix", "")

	v.SetDefault("pdf.currency_symbol", "Rs.")
	v.SetDefault("pdf.date_layout", "02/01/2006")
	v.SetDefault("pdf.compress", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.sampling", false)
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for local storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver)
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required")
	}
	if !c.App.Dev && c.Session.Secret == "devsessionsecret" {
		return fmt.Errorf("session.secret must be set outside dev mode")
	}
	return nil
}
