// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Server      ServerConfig      `mapstructure:"server"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	LLM         LLMConfig         `mapstructure:"llm"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Discord     DiscordConfig     `mapstructure:"discord"`
	Wellness    WellnessConfig    `mapstructure:"wellness"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// StorageConfig contains database configuration
type StorageConfig struct {
	Type             string        `mapstructure:"type"` // sqlite, postgres
	ConnectionString string        `mapstructure:"connection_string"`
	MaxConnections   int           `mapstructure:"max_connections"`
	MaxIdleTime      time.Duration `mapstructure:"max_idle_time"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Host          string        `mapstructure:"host"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
	EnableHealth  bool          `mapstructure:"enable_health"`
}

// PipelineConfig contains event pipeline configuration
type PipelineConfig struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	HistoryLimit   int           `mapstructure:"history_limit"`
	RetrievalLimit int           `mapstructure:"retrieval_limit"`
}

// LLMConfig contains language model configuration
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Temperature    float64       `mapstructure:"temperature"`
}

// VectorStoreConfig contains knowledge base configuration
type VectorStoreConfig struct {
	Path       string `mapstructure:"path"`
	Collection string `mapstructure:"collection"`
	Compress   bool   `mapstructure:"compress"`
}

// DiscordConfig contains Discord bot configuration
type DiscordConfig struct {
	Token          string        `mapstructure:"token"`
	CommandPrefix  string        `mapstructure:"command_prefix"`
	BotUserID      int64         `mapstructure:"bot_user_id"`
	EventsURL      string        `mapstructure:"events_url"`
	ForwardTimeout time.Duration `mapstructure:"forward_timeout"`
	SendRetries    int           `mapstructure:"send_retries"`
	SendRetryDelay time.Duration `mapstructure:"send_retry_delay"`
}

// WellnessConfig contains scheduled content configuration
type WellnessConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CronSpec     string `mapstructure:"cron_spec"`
	ChannelID    int64  `mapstructure:"channel_id"`
	HistoryLimit int    `mapstructure:"history_limit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// The quick-start keeps secrets in an .env file next to the binary.
	// Missing file is fine; real environments set variables directly.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./internal/config")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("LAUNCHPAD")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override with the well-known environment variables from the runbook
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Storage.ConnectionString = dbURL
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		config.Discord.Token = token
	}
	if channel := os.Getenv("WELLNESS_CHANNEL_ID"); channel != "" {
		var id int64
		if _, err := fmt.Sscanf(channel, "%d", &id); err == nil {
			config.Wellness.ChannelID = id
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "launchpad")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Storage defaults match the documented local stack
	viper.SetDefault("storage.type", "postgres")
	viper.SetDefault("storage.connection_string",
		"host=localhost port=5432 dbname=psyche-voyage_database user=psyche-voyage password=super-secret-postgres-password sslmode=disable")
	viper.SetDefault("storage.max_connections", 25)
	viper.SetDefault("storage.max_idle_time", "15m")

	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.enable_metrics", true)
	viper.SetDefault("server.enable_health", true)

	// Pipeline defaults
	viper.SetDefault("pipeline.workers", 4)
	viper.SetDefault("pipeline.queue_size", 256)
	viper.SetDefault("pipeline.process_timeout", "120s")
	viper.SetDefault("pipeline.history_limit", 10)
	viper.SetDefault("pipeline.retrieval_limit", 10)

	// LLM defaults
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("llm.request_timeout", "60s")
	viper.SetDefault("llm.temperature", 0.7)

	// Vector store defaults
	viper.SetDefault("vector_store.path", "./data/knowledge")
	viper.SetDefault("vector_store.collection", "knowledge_base")
	viper.SetDefault("vector_store.compress", false)

	// Discord defaults
	viper.SetDefault("discord.command_prefix", "!")
	viper.SetDefault("discord.events_url", "http://localhost:8080/api/v1/events")
	viper.SetDefault("discord.forward_timeout", "5s")
	viper.SetDefault("discord.send_retries", 3)
	viper.SetDefault("discord.send_retry_delay", "1s")

	// Wellness defaults: the original beat schedule fired every 10 minutes
	viper.SetDefault("wellness.enabled", true)
	viper.SetDefault("wellness.cron_spec", "*/10 * * * *")
	viper.SetDefault("wellness.history_limit", 100)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.ConnectionString == "" {
		return fmt.Errorf("storage connection string is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline workers must be positive")
	}
	if c.Pipeline.QueueSize <= 0 {
		return fmt.Errorf("pipeline queue size must be positive")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.Wellness.Enabled && c.Wellness.CronSpec == "" {
		return fmt.Errorf("wellness cron spec is required when the scheduler is enabled")
	}
	return nil
}
