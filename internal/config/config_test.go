package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "launchpad", cfg.App.Name)
	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.Equal(t, 25, cfg.Storage.MaxConnections)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 256, cfg.Pipeline.QueueSize)
	assert.Equal(t, 10, cfg.Pipeline.HistoryLimit)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 60*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, "knowledge_base", cfg.VectorStore.Collection)
	assert.Equal(t, "*/10 * * * *", cfg.Wellness.CronSpec)
	assert.True(t, cfg.Wellness.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: launchpad-test
storage:
  type: sqlite
  connection_string: ./test.db
pipeline:
  workers: 2
wellness:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "launchpad-test", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "./test.db", cfg.Storage.ConnectionString)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.False(t, cfg.Wellness.Enabled)
	// Unset keys keep their defaults
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "host=db port=5432 dbname=launchpad")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("WELLNESS_CHANNEL_ID", "123456789")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5432 dbname=launchpad", cfg.Storage.ConnectionString)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "bot-token", cfg.Discord.Token)
	assert.Equal(t, int64(123456789), cfg.Wellness.ChannelID)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:  StorageConfig{ConnectionString: "./test.db"},
			Server:   ServerConfig{Port: 8080},
			Pipeline: PipelineConfig{Workers: 4, QueueSize: 256},
			LLM:      LLMConfig{Model: "gpt-4o"},
			Wellness: WellnessConfig{Enabled: true, CronSpec: "*/10 * * * *"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing connection string", func(c *Config) { c.Storage.ConnectionString = "" }, true},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }, true},
		{"zero queue size", func(c *Config) { c.Pipeline.QueueSize = 0 }, true},
		{"missing model", func(c *Config) { c.LLM.Model = "" }, true},
		{"scheduler without cron spec", func(c *Config) { c.Wellness.CronSpec = "" }, true},
		{"disabled scheduler without cron spec", func(c *Config) {
			c.Wellness.Enabled = false
			c.Wellness.CronSpec = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
