package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const DefaultPath = "config.txt"

const (
	GameBF1 = "bf1"
	GameBFV = "bfv"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	keyToken             = "token"
	keyGame              = "game"
	keyServerName        = "server_name"
	keyServerID          = "server_id"
	keySetBannerImage    = "set_banner_image"
	keyInterval          = "interval"
	keyHealthAddr        = "health_addr"
	keyEnvironment       = "environment"
	keyLogLevel          = "log_level"
	keySentryDSN         = "sentry_dsn"
	keyStatusURL         = "status_url"
	keyAvatarMinInterval = "avatar_min_interval"
)

var keys = []string{
	keyToken, keyGame, keyServerName, keyServerID, keySetBannerImage,
	keyInterval, keyHealthAddr, keyEnvironment, keyLogLevel,
	keySentryDSN, keyStatusURL, keyAvatarMinInterval,
}

type Config struct {
	Token          string `mapstructure:"token" json:"token"`
	Game           string `mapstructure:"game" json:"game"`
	ServerName     string `mapstructure:"server_name" json:"server_name"`
	ServerID       int64  `mapstructure:"server_id" json:"server_id"`
	SetBannerImage bool   `mapstructure:"set_banner_image" json:"set_banner_image"`

	Interval          time.Duration `mapstructure:"interval" json:"interval"`
	HealthAddr        string        `mapstructure:"health_addr" json:"health_addr"`
	Environment       string        `mapstructure:"environment" json:"environment"`
	LogLevel          string        `mapstructure:"log_level" json:"log_level"`
	SentryDSN         string        `mapstructure:"sentry_dsn" json:"sentry_dsn"`
	StatusURL         string        `mapstructure:"status_url" json:"status_url"`
	AvatarMinInterval time.Duration `mapstructure:"avatar_min_interval" json:"avatar_min_interval"`
}

// ConfigError is returned for any problem that prevents the bot from starting:
// an unreadable file or a setting that fails validation.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads path (when it exists), overlays the environment and validates the
// merged settings. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()

	v.SetDefault(keyToken, "")
	v.SetDefault(keyGame, GameBF1)
	v.SetDefault(keyServerName, "")
	v.SetDefault(keyServerID, 0)
	v.SetDefault(keySetBannerImage, true)
	v.SetDefault(keyInterval, "60s")
	v.SetDefault(keyHealthAddr, ":3030")
	v.SetDefault(keyEnvironment, EnvProd)
	v.SetDefault(keyLogLevel, LogLevelInfo)
	v.SetDefault(keySentryDSN, "")
	v.SetDefault(keyStatusURL, "")
	v.SetDefault(keyAvatarMinInterval, "5m")

	// Container platforms inject both spellings, the lower-case one first.
	for _, key := range keys {
		if err := v.BindEnv(key, key, strings.ToUpper(key)); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml", ".env":
	default:
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("path", path), slog.String("error", err.Error()))
			return nil, &ConfigError{Path: path, Err: err}
		}
		slog.Warn("config file not found, using defaults and environment variables", slog.String("path", path))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg.Game = strings.ToLower(strings.TrimSpace(cfg.Game))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, &ConfigError{Path: path, Err: err}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required),
		validation.Field(&c.Game,
			validation.Required,
			validation.In(GameBF1, GameBFV),
		),
		validation.Field(&c.ServerName,
			validation.When(c.ServerID == 0,
				validation.Required.Error("server_name or server_id must be set"),
			),
		),
		validation.Field(&c.ServerID, validation.Min(int64(0))),
		validation.Field(&c.Interval,
			validation.Required,
			validation.Min(5*time.Second),
		),
		validation.Field(&c.HealthAddr,
			validation.Required,
			validation.By(validateHostPort),
		),
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.LogLevel,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&c.StatusURL, is.URL),
		validation.Field(&c.AvatarMinInterval, validation.Min(time.Duration(0))),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
