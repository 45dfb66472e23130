package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Sync.Days)
	assert.False(t, cfg.Sync.IncludeAllDay)
	assert.Equal(t, 5000, cfg.Sync.MaxOccurrences)
	assert.Equal(t, "*/15 * * * *", cfg.Sync.Schedule)
	assert.Equal(t, "notion", cfg.Store.Driver)
	assert.Equal(t, "Calendar Sync", cfg.Store.ParentName)
	assert.Equal(t, "Calendar Sync - Driver Database", cfg.Store.ControlName)
	assert.Equal(t, "https://api.notion.com/v1", cfg.Notion.BaseURL)
	assert.Equal(t, "2022-06-28", cfg.Notion.Version)
	assert.Equal(t, 15, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SYNC_DAYS", "30")
	t.Setenv("SYNC_INCLUDE_ALL_DAY", "true")
	t.Setenv("STORE_DRIVER", "sql")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Sync.Days)
	assert.True(t, cfg.Sync.IncludeAllDay)
	assert.Equal(t, "sql", cfg.Store.Driver)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NOTION_TOKEN=secret_abc\nSERVER_PORT=9090\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("NOTION_TOKEN")
		os.Unsetenv("SERVER_PORT")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "secret_abc", cfg.Notion.Token)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"notion without token", func(c *Config) {}, "notion.token is required"},
		{"notion with token", func(c *Config) { c.Notion.Token = "t" }, ""},
		{"sql", func(c *Config) { c.Store.Driver = "sql" }, ""},
		{"sql without name", func(c *Config) { c.Store.Driver = "sql"; c.Database.Name = "" }, "database.name is required"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "csv" }, "unsupported store driver"},
		{"zero days", func(c *Config) { c.Notion.Token = "t"; c.Sync.Days = 0 }, "sync.days must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
