package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SCRIBE_DATABASE_PATH.
const EnvPrefix = "SCRIBE"

type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		APIPrefix       string        `mapstructure:"api_prefix"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Database struct {
		Path       string `mapstructure:"path"`
		InMemory   bool   `mapstructure:"in_memory"`
		GCSchedule string `mapstructure:"gc_schedule"`
		BackupDir  string `mapstructure:"backup_dir"`
	} `mapstructure:"database"`

	Cache struct {
		SummaryTTL time.Duration `mapstructure:"summary_ttl"`
	} `mapstructure:"cache"`

	Posts struct {
		PerPage    int `mapstructure:"per_page"`
		MaxPerPage int `mapstructure:"max_per_page"`
	} `mapstructure:"posts"`

	Auth struct {
		UserIDHeader    string `mapstructure:"user_id_header"`
		UserNameHeader  string `mapstructure:"user_name_header"`
		UserEmailHeader string `mapstructure:"user_email_header"`
	} `mapstructure:"auth"`

	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "data/badger")
	v.SetDefault("database.in_memory", false)
	v.SetDefault("database.gc_schedule", "@every 60m")
	v.SetDefault("database.backup_dir", "data/backups")

	v.SetDefault("cache.summary_ttl", 5*time.Minute)

	v.SetDefault("posts.per_page", 10)
	v.SetDefault("posts.max_per_page", 100)

	v.SetDefault("auth.user_id_header", "X-User-ID")
	v.SetDefault("auth.user_name_header", "X-User-Name")
	v.SetDefault("auth.user_email_header", "X-User-Email")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// Load reads settings.toml from the given directories (default "." and
// "..") when present, then applies SCRIBE_* environment overrides on top
// of the defaults.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{".", ".."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("settings")
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix must start with '/', got %q", c.Server.APIPrefix)
	}
	if !c.Database.InMemory && c.Database.Path == "" {
		return errors.New("database.path must be set unless database.in_memory is true")
	}
	if c.Posts.MaxPerPage < 1 || c.Posts.PerPage < 1 {
		return errors.New("posts.per_page and posts.max_per_page must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LogLevel returns the configured zerolog level.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
