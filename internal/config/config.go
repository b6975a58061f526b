// Package config loads desk settings from defaults, an optional YAML file,
// KHOBOR_* environment variables (with .env support) and explicit overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/Adda-Baaj/khobor-desk/pkg/providers"
)

const (
	envPrefix         = "KHOBOR"
	defaultConfigName = "khobor"
	defaultEnvFile    = ".env"

	SourceBackend   = "backend"
	SourceProviders = "providers"
)

// Config is the full desk configuration.
type Config struct {
	Backend    BackendConfig    `mapstructure:"backend"`
	News       NewsConfig       `mapstructure:"news"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Publishers PublishersConfig `mapstructure:"publishers"`
	Store      StoreConfig      `mapstructure:"store"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Log        LogConfig        `mapstructure:"log"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NewsConfig struct {
	Source            string        `mapstructure:"source"`
	ProvidersFile     string        `mapstructure:"providers_file"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	PageSize          int           `mapstructure:"page_size"`
	DefaultQuery      string        `mapstructure:"default_query"`
	Region            string        `mapstructure:"region"`
	NotificationLimit int           `mapstructure:"notification_limit"`
	Enrich            bool          `mapstructure:"enrich"`
}

type SpeechConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type PublishersConfig struct {
	File string `mapstructure:"file"`
}

type StoreConfig struct {
	Path   string `mapstructure:"path"`
	Resume bool   `mapstructure:"resume"`
}

type AgentConfig struct {
	Refresh string `mapstructure:"refresh"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file; when empty khobor.yaml in the working
	// directory is used if present.
	File string
	// EnvFile is loaded into the process environment when it exists.
	// Defaults to .env.
	EnvFile string
	// Overrides win over every other source, keyed like "news.page_size".
	Overrides map[string]any
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://localhost:5000")
	v.SetDefault("backend.timeout", 20*time.Second)
	v.SetDefault("news.source", SourceBackend)
	v.SetDefault("news.providers_file", "")
	v.SetDefault("news.poll_interval", 60*time.Second)
	v.SetDefault("news.page_size", 30)
	v.SetDefault("news.default_query", "latest technology business AI")
	v.SetDefault("news.region", "")
	v.SetDefault("news.notification_limit", 50)
	v.SetDefault("news.enrich", false)
	v.SetDefault("speech.command", "espeak")
	v.SetDefault("speech.args", []string{})
	v.SetDefault("publishers.file", "")
	v.SetDefault("store.path", "")
	v.SetDefault("store.resume", false)
	v.SetDefault("agent.refresh", "@every 30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load resolves the configuration and validates it.
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg = sanitize(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func sanitize(cfg Config) Config {
	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	cfg.News.Source = strings.ToLower(strings.TrimSpace(cfg.News.Source))
	cfg.News.ProvidersFile = strings.TrimSpace(cfg.News.ProvidersFile)
	cfg.News.DefaultQuery = strings.TrimSpace(cfg.News.DefaultQuery)
	cfg.News.Region = strings.TrimSpace(cfg.News.Region)
	cfg.News.PageSize = providers.ClampPageSize(cfg.News.PageSize)
	cfg.Speech.Command = strings.TrimSpace(cfg.Speech.Command)
	cfg.Agent.Refresh = strings.TrimSpace(cfg.Agent.Refresh)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	return cfg
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	switch c.News.Source {
	case SourceBackend:
	case SourceProviders:
		if c.News.ProvidersFile == "" {
			return errors.New("news.providers_file is required when news.source is providers")
		}
	default:
		return fmt.Errorf("news.source %q not supported", c.News.Source)
	}
	if c.News.PollInterval <= 0 {
		return errors.New("news.poll_interval must be positive")
	}
	if c.News.NotificationLimit <= 0 {
		return errors.New("news.notification_limit must be positive")
	}
	if c.Agent.Refresh != "" {
		if _, err := cron.ParseStandard(c.Agent.Refresh); err != nil {
			return fmt.Errorf("agent.refresh: %w", err)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q not supported", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format %q not supported", c.Log.Format)
	}
	return nil
}
