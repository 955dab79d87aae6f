package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cerodriguez46/devbyte/internal/database"
	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/network"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DEVBYTE"

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Remote RemoteConfig `mapstructure:"remote"`
	Misc   MiscConfig   `mapstructure:"misc"`
}

type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutDownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RefreshTimeout     time.Duration `mapstructure:"refresh_timeout"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
}

// DataConfig selects and configures the local video store.
type DataConfig struct {
	StoreType string `mapstructure:"store_type"` // memory, json, postgres, mysql
	FilePath  string `mapstructure:"file_path"`
	DSN       string `mapstructure:"dsn"`
	WriteMode string `mapstructure:"write_mode"` // replace, upsert
}

// RemoteConfig selects the playlist source and the background refresh cadence.
type RemoteConfig struct {
	SourceType      string        `mapstructure:"source_type"` // devbytes, youtube
	BaseURL         string        `mapstructure:"base_url"`
	PlaylistID      string        `mapstructure:"playlist_id"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RefreshOnStart  bool          `mapstructure:"refresh_on_start"`
	IOParallelism   int           `mapstructure:"io_parallelism"`
}

type MiscConfig struct {
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"`
	GinMode           string `mapstructure:"gin_mode"`
	HoneybadgerAPIKey string `mapstructure:"honeybadger_api_key"`
	Environment       string `mapstructure:"environment"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 2*time.Second)
	v.SetDefault("server.refresh_timeout", 30*time.Second)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("data.store_type", "json")
	v.SetDefault("data.file_path", "./config/data/videos.json")
	v.SetDefault("data.dsn", "")
	v.SetDefault("data.write_mode", "replace")

	v.SetDefault("remote.source_type", "devbytes")
	v.SetDefault("remote.base_url", "https://android-kotlin-fun-mooc.appspot.com")
	v.SetDefault("remote.playlist_id", "")
	v.SetDefault("remote.timeout", 15*time.Second)
	v.SetDefault("remote.refresh_interval", 24*time.Hour)
	v.SetDefault("remote.refresh_on_start", true)
	v.SetDefault("remote.io_parallelism", 64)

	v.SetDefault("misc.log_level", "info")
	v.SetDefault("misc.log_format", "text")
	v.SetDefault("misc.gin_mode", "release")
	v.SetDefault("misc.honeybadger_api_key", "")
	v.SetDefault("misc.environment", "production")
}

// LoadConfig reads .env, the optional config.yaml and DEVBYTE_* environment variables,
// in increasing order of precedence, and validates the result.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("cannot load .env file: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnvOrDefault(envPrefix+"_CONFIG_PATH", "./config"))

	setDefaults(v)

	// Environment variables like DEVBYTE_SERVER_PORT will override server.port
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Info("no config file found, using defaults and env vars")
	} else {
		logger.WithComponent("config").Infof("using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	port, err := getEnvOrViperPort("PORT", "server.port", v)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = port

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return errors.New("server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout < 0 {
		return errors.New("server.write_timeout must not be negative")
	}
	if c.Server.IdleTimeout <= 0 {
		return errors.New("server.idle_timeout must be positive")
	}
	if c.Server.ShutDownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	if c.Server.RefreshTimeout <= 0 {
		return errors.New("server.refresh_timeout must be positive")
	}

	switch c.Data.StoreType {
	case database.StoreTypeMemory:
	case database.StoreTypeJSON, "":
		if c.Data.FilePath == "" {
			return errors.New("data.file_path is required for the json store")
		}
	case database.StoreTypePostgres, database.StoreTypeMySQL:
		if c.Data.DSN == "" {
			return fmt.Errorf("data.dsn is required for the %s store", c.Data.StoreType)
		}
	default:
		return fmt.Errorf("unknown data.store_type: %q", c.Data.StoreType)
	}
	if _, err := database.ParseWriteMode(c.Data.WriteMode); err != nil {
		return fmt.Errorf("data.write_mode: %w", err)
	}

	switch c.Remote.SourceType {
	case network.SourceTypeDevBytes, "":
		if c.Remote.BaseURL == "" {
			return errors.New("remote.base_url is required for the devbytes source")
		}
	case network.SourceTypeYouTube:
		if c.Remote.PlaylistID == "" {
			return errors.New("remote.playlist_id is required for the youtube source")
		}
	default:
		return fmt.Errorf("unknown remote.source_type: %q", c.Remote.SourceType)
	}
	if c.Remote.Timeout <= 0 {
		return errors.New("remote.timeout must be positive")
	}
	if c.Remote.RefreshInterval <= 0 {
		return errors.New("remote.refresh_interval must be positive")
	}
	if c.Remote.IOParallelism <= 0 {
		return errors.New("remote.io_parallelism must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrViperPort prefers the plain env var (as set by most PaaS) over the viper key.
func getEnvOrViperPort(envKey, viperKey string, v *viper.Viper) (int, error) {
	if value := os.Getenv(envKey); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", envKey, value, err)
		}
		return port, nil
	}
	return v.GetInt(viperKey), nil
}
