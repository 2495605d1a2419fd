package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Storage backends for the favorites list.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	GitHubAPIURL   string
	HTTPTimeout    time.Duration
	LogLevel       string
	LogFormat      string
	StorageBackend string
	StoragePath    string
	SearchDebounce time.Duration
	PageSize       int
	ServerAddr     string
	Postgres       PostgresConfig
}

// PostgresConfig holds the connection settings of the postgres storage backend.
type PostgresConfig struct {
	User            string
	Password        string
	DB              string
	Host            string
	Port            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s port=%s host=%s sslmode=%s",
		p.User, p.Password, p.DB, p.Port, p.Host, p.SSLMode,
	)
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load reads configuration from the optional env file and the environment.
// Environment variables win over the file.
func (c *Config) Load(envFile string) error {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	c.GitHubAPIURL = v.GetString("GITHUB_API_URL")
	c.LogLevel = v.GetString("LOG_LEVEL")
	c.LogFormat = v.GetString("LOG_FORMAT")
	c.StorageBackend = v.GetString("STORAGE_BACKEND")
	c.StoragePath = v.GetString("STORAGE_PATH")
	c.PageSize = v.GetInt("PAGE_SIZE")
	c.ServerAddr = v.GetString("SERVER_ADDR")

	var err error
	if c.HTTPTimeout, err = parseDuration(v, "HTTP_TIMEOUT"); err != nil {
		return err
	}
	if c.SearchDebounce, err = parseDuration(v, "SEARCH_DEBOUNCE"); err != nil {
		return err
	}

	c.Postgres = PostgresConfig{
		User:         v.GetString("POSTGRES_USER"),
		Password:     v.GetString("POSTGRES_PASSWORD"),
		DB:           v.GetString("POSTGRES_DB"),
		Host:         v.GetString("POSTGRES_HOST"),
		Port:         v.GetString("POSTGRES_PORT"),
		SSLMode:      v.GetString("POSTGRES_SSLMODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}
	if c.Postgres.ConnMaxLifetime, err = parseDuration(v, "DB_CONN_MAX_LIFETIME"); err != nil {
		return err
	}

	return c.Validate()
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.GitHubAPIURL == "" {
		return fmt.Errorf("GITHUB_API_URL is required")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be within 1..100, got %d", c.PageSize)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	switch c.StorageBackend {
	case StorageFile:
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the file backend")
		}
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.Host == "" || c.Postgres.DB == "" {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required for the postgres backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of file, memory, postgres; got %q", c.StorageBackend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("STORAGE_BACKEND", StorageFile)
	v.SetDefault("STORAGE_PATH", defaultStoragePath())
	v.SetDefault("SEARCH_DEBOUNCE", "500ms")
	v.SetDefault("PAGE_SIZE", 30)
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
