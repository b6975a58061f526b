package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, opts Options) (Config, error) {
	t.Helper()
	if opts.EnvFile == "" {
		opts.EnvFile = filepath.Join(t.TempDir(), "missing.env")
	}
	return Load(opts)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t, Options{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SourceBackend, cfg.News.Source)
	assert.Equal(t, 60*time.Second, cfg.News.PollInterval)
	assert.Equal(t, 30, cfg.News.PageSize)
	assert.Equal(t, "latest technology business AI", cfg.News.DefaultQuery)
	assert.Equal(t, 50, cfg.News.NotificationLimit)
	assert.Equal(t, "espeak", cfg.Speech.Command)
	assert.Equal(t, "@every 30s", cfg.Agent.Refresh)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFileEnvAndOverrides(t *testing.T) {
	path := writeFile(t, "khobor.yaml", `
backend:
  base_url: http://panel.test/
  timeout: 5s
news:
  poll_interval: 2m
  page_size: 500
  region: in,us
speech:
  command: say
`)
	t.Setenv("KHOBOR_NEWS_REGION", "gb")
	t.Setenv("KHOBOR_SPEECH_ARGS", "-r,180")

	cfg, err := load(t, Options{File: path, Overrides: map[string]any{"log.level": "DEBUG"}})
	require.NoError(t, err)

	assert.Equal(t, "http://panel.test", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.News.PollInterval)
	assert.Equal(t, 100, cfg.News.PageSize)
	assert.Equal(t, "gb", cfg.News.Region)
	assert.Equal(t, "say", cfg.Speech.Command)
	assert.Equal(t, []string{"-r", "180"}, cfg.Speech.Args)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvFile(t *testing.T) {
	envFile := writeFile(t, "test.env", "KHOBOR_BACKEND_BASE_URL=http://from-dotenv.test\n")
	t.Cleanup(func() { _ = os.Unsetenv("KHOBOR_BACKEND_BASE_URL") })

	cfg, err := load(t, Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "http://from-dotenv.test", cfg.Backend.BaseURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := load(t, Options{File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := load(t, Options{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no base url", func(c *Config) { c.Backend.BaseURL = "" }, "backend.base_url is required"},
		{"zero timeout", func(c *Config) { c.Backend.Timeout = 0 }, "backend.timeout must be positive"},
		{"providers without file", func(c *Config) { c.News.Source = SourceProviders }, "news.providers_file is required"},
		{"unknown source", func(c *Config) { c.News.Source = "rss" }, `news.source "rss" not supported`},
		{"zero poll", func(c *Config) { c.News.PollInterval = 0 }, "news.poll_interval must be positive"},
		{"zero limit", func(c *Config) { c.News.NotificationLimit = 0 }, "news.notification_limit must be positive"},
		{"bad schedule", func(c *Config) { c.Agent.Refresh = "every now and then" }, "agent.refresh"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, `log.level "loud"`},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, `log.format "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.NoError(t, base.Validate())
}
