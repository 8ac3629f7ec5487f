// File: cmd/launchpad/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psyche-voyage/launchpad/internal/config"
	"github.com/psyche-voyage/launchpad/internal/discord"
	"github.com/psyche-voyage/launchpad/internal/llm"
	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/pipeline"
	"github.com/psyche-voyage/launchpad/internal/server"
	"github.com/psyche-voyage/launchpad/internal/storage"
	"github.com/psyche-voyage/launchpad/internal/vectorstore"
	"github.com/psyche-voyage/launchpad/internal/wellness"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// AppVersion contains the application version
const AppVersion = "1.0.0"

// Application represents the main application
type Application struct {
	config     *config.Config
	logger     *logrus.Logger
	metrics    *metrics.Manager
	storage    storage.Storage
	llm        *llm.Client
	knowledge  *vectorstore.Store
	bot        *discord.Bot
	dispatcher *pipeline.Dispatcher
	scheduler  *wellness.Scheduler
	server     *server.HTTPServer
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.initializeLogger(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := app.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return app, nil
}

// initializeLogger initializes the application logger
func (app *Application) initializeLogger() error {
	logCfg := app.config.Logging

	if err := utils.InitLogger(logCfg.Level, logCfg.Format, logCfg.Output, logCfg.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger = utils.GetLogger()
	app.logger.WithFields(logrus.Fields{
		"level":  logCfg.Level,
		"format": logCfg.Format,
	}).Info("Logger initialized")

	return nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.logger.Info("Initializing application components")

	app.metrics = metrics.NewManager()

	if err := app.initializeStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initializeLLM(); err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	if err := app.initializeKnowledgeBase(); err != nil {
		return fmt.Errorf("failed to initialize knowledge base: %w", err)
	}

	if err := app.initializeDiscord(); err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	app.initializePipeline()

	wellnessManager := app.buildWellnessManager()
	if app.config.Wellness.Enabled {
		app.scheduler = wellness.NewScheduler(
			wellnessManager,
			app.config.Wellness.CronSpec,
			app.config.Pipeline.ProcessTimeout,
		)
	}

	app.server = server.NewHTTPServer(
		&app.config.Server,
		app.storage,
		app.dispatcher,
		wellnessManager,
		app.knowledge,
		app.metrics,
		AppVersion,
	)

	app.logger.Info("All components initialized successfully")
	return nil
}

// initializeStorage initializes the storage layer
func (app *Application) initializeStorage() error {
	storageCfg := &storage.StorageConfig{
		Type:             app.config.Storage.Type,
		ConnectionString: app.config.Storage.ConnectionString,
		MaxConnections:   app.config.Storage.MaxConnections,
		MaxIdleTime:      app.config.Storage.MaxIdleTime,
	}

	store, err := storage.NewStorage(storageCfg)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to run storage migrations: %w", err)
	}

	switch s := store.(type) {
	case *storage.PostgresStorage:
		s.SetMetricsManager(app.metrics)
	case *storage.SQLiteStorage:
		s.SetMetricsManager(app.metrics)
	}

	app.storage = store
	app.logger.WithField("type", app.config.Storage.Type).Info("Storage layer initialized")
	return nil
}

// initializeLLM initializes the OpenAI client
func (app *Application) initializeLLM() error {
	client, err := llm.NewClient(&app.config.LLM)
	if err != nil {
		return err
	}
	client.SetMetricsManager(app.metrics)
	app.llm = client
	app.logger.WithField("model", app.config.LLM.Model).Info("LLM client initialized")
	return nil
}

// initializeKnowledgeBase opens the persistent vector store
func (app *Application) initializeKnowledgeBase() error {
	store, err := vectorstore.New(&app.config.VectorStore, app.llm.EmbeddingFunc())
	if err != nil {
		return err
	}
	app.knowledge = store
	app.metrics.GetPrometheusMetrics().UpdateKnowledgeBaseDocuments(store.Count())
	app.logger.WithField("documents", store.Count()).Info("Knowledge base initialized")
	return nil
}

// initializeDiscord creates the gateway bot
func (app *Application) initializeDiscord() error {
	bot, err := discord.NewBot(&app.config.Discord)
	if err != nil {
		return err
	}
	bot.Sender().SetMetricsManager(app.metrics)
	app.bot = bot
	app.logger.Info("Discord bot initialized")
	return nil
}

// initializePipeline wires the node chain and dispatcher
func (app *Application) initializePipeline() {
	pipelineCfg := app.config.Pipeline

	p := pipeline.New(app.storage,
		pipeline.NewAnalyzeNode(app.llm, app.storage, pipelineCfg.HistoryLimit),
		pipeline.NewRespondNode(app.llm, app.knowledge, app.storage, pipelineCfg.HistoryLimit, pipelineCfg.RetrievalLimit),
		pipeline.NewReplyNode(app.bot.Sender()),
	)
	p.SetMetricsManager(app.metrics)

	app.dispatcher = pipeline.NewDispatcher(p, pipelineCfg.Workers, pipelineCfg.QueueSize, pipelineCfg.ProcessTimeout)
	app.dispatcher.SetMetricsManager(app.metrics)
}

// buildWellnessManager wires the scheduled content manager
func (app *Application) buildWellnessManager() *wellness.Manager {
	manager := wellness.NewManager(
		app.llm,
		app.storage,
		app.bot.Sender(),
		app.config.Wellness.ChannelID,
		app.config.Wellness.HistoryLimit,
	)
	manager.SetMetricsManager(app.metrics)
	return manager
}

// Start starts the application
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"environment": app.config.App.Environment,
	}).Info("Starting launchpad")

	if err := app.dispatcher.Start(app.ctx); err != nil {
		return fmt.Errorf("failed to start pipeline dispatcher: %w", err)
	}

	if err := app.server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := app.bot.Start(); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	if app.scheduler != nil {
		if err := app.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start wellness scheduler: %w", err)
		}
	}

	go app.metrics.RunSystemMetricsUpdater(app.ctx, 30*time.Second)

	app.logger.WithFields(logrus.Fields{
		"server_address": fmt.Sprintf("%s:%d", app.config.Server.Host, app.config.Server.Port),
	}).Info("Launchpad started successfully")

	return nil
}

// Stop stops the application gracefully
func (app *Application) Stop() error {
	app.logger.Info("Stopping launchpad")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.bot != nil {
		if err := app.bot.Stop(); err != nil {
			app.logger.WithField("error", err.Error()).Error("Failed to stop Discord bot")
		}
	}

	if app.server != nil {
		if err := app.server.Stop(); err != nil {
			app.logger.WithField("error", err.Error()).Error("Failed to stop HTTP server")
		}
	}

	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}

	app.cancel()

	if app.storage != nil {
		if err := app.storage.Close(); err != nil {
			app.logger.WithField("error", err.Error()).Error("Failed to close storage")
		}
	}

	app.logger.Info("Launchpad stopped successfully")
	return nil
}

// CLI Commands

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "launchpad",
	Short:   "Psyche Voyage community launchpad",
	Long:    `An event-driven Discord assistant for the Psyche Voyage wellness community, combining an ingestion API, an LLM pipeline with knowledge retrieval, and scheduled channel content.`,
	Version: AppVersion,
	RunE:    runLaunchpad,
}

// runLaunchpad is the main command to run the service
func runLaunchpad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	if err := app.Start(); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	<-signalChan
	fmt.Println("\nReceived shutdown signal, stopping application...")

	if err := app.Stop(); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}

	return nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Psyche Voyage Launchpad %s\n", AppVersion)
	},
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

// validateConfigCmd validates the configuration
var validateConfigCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Environment: %s\n", cfg.App.Environment)
		fmt.Printf("Database: %s\n", cfg.Storage.Type)
		fmt.Printf("LLM model: %s\n", cfg.LLM.Model)
		fmt.Printf("Wellness schedule: %s\n", cfg.Wellness.CronSpec)

		return nil
	},
}

// migrateCmd applies database migrations and exits
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.File); err != nil {
			return err
		}

		store, err := storage.NewStorage(&storage.StorageConfig{
			Type:             cfg.Storage.Type,
			ConnectionString: cfg.Storage.ConnectionString,
			MaxConnections:   cfg.Storage.MaxConnections,
			MaxIdleTime:      cfg.Storage.MaxIdleTime,
		})
		if err != nil {
			return err
		}
		if err := store.Connect(); err != nil {
			return err
		}
		defer store.Close()

		if err := store.Migrate(); err != nil {
			return err
		}
		fmt.Println("Migrations applied successfully")
		return nil
	},
}

// seedVectorsCmd loads knowledge base documents into the vector store
var seedVectorsCmd = &cobra.Command{
	Use:   "seed-vectors",
	Short: "Seed the knowledge base from a JSON document file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := utils.InitLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.File); err != nil {
			return err
		}

		docsPath, _ := cmd.Flags().GetString("file")
		raw, err := os.ReadFile(docsPath)
		if err != nil {
			return fmt.Errorf("failed to read documents file: %w", err)
		}

		var docs []models.KBDocument
		if err := json.Unmarshal(raw, &docs); err != nil {
			return fmt.Errorf("failed to parse documents file: %w", err)
		}

		client, err := llm.NewClient(&cfg.LLM)
		if err != nil {
			return err
		}
		store, err := vectorstore.New(&cfg.VectorStore, client.EmbeddingFunc())
		if err != nil {
			return err
		}

		added, err := store.Seed(context.Background(), docs)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d documents (%d total in store)\n", added, store.Count())
		return nil
	},
}

// sendEventCmd posts a fixture event to a running instance
var sendEventCmd = &cobra.Command{
	Use:   "send-event",
	Short: "Send a test event to the ingestion endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		eventPath, _ := cmd.Flags().GetString("file")
		url, _ := cmd.Flags().GetString("url")

		raw, err := os.ReadFile(eventPath)
		if err != nil {
			return fmt.Errorf("failed to read event file: %w", err)
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("event file is not valid JSON: %w", err)
		}

		resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("failed to post event: %w", err)
		}
		defer resp.Body.Close()

		var body map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("unexpected status %d: %v", resp.StatusCode, body)
		}

		fmt.Printf("Event accepted: %v\n", body["event_id"])
		return nil
	},
}

// wellnessCmd groups wellness content commands
var wellnessCmd = &cobra.Command{
	Use:   "wellness",
	Short: "Wellness content commands",
}

// wellnessPostCmd generates and posts one piece of content immediately
var wellnessPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Generate and post one wellness message now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		app, err := NewApplication(cfg)
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		defer app.Stop()

		if err := app.bot.Start(); err != nil {
			return fmt.Errorf("failed to start Discord bot: %w", err)
		}

		manager := app.buildWellnessManager()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.ProcessTimeout)
		defer cancel()

		content, err := manager.GenerateAndPost(ctx)
		if err != nil {
			return fmt.Errorf("failed to post wellness content: %w", err)
		}

		fmt.Printf("Posted %s to channel %d\n", content.ContentType, content.ChannelID)
		return nil
	},
}

// loadConfig loads and validates configuration using the --config flag
func loadConfig() (*config.Config, error) {
	configPath := viper.GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// init initializes the CLI commands
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	seedVectorsCmd.Flags().String("file", "./data/kb_documents.json", "path to the knowledge base documents JSON file")
	sendEventCmd.Flags().String("file", "./data/event.json", "path to the event payload JSON file")
	sendEventCmd.Flags().String("url", "http://localhost:8080/api/v1/events", "event ingestion endpoint")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedVectorsCmd)
	rootCmd.AddCommand(sendEventCmd)
	rootCmd.AddCommand(wellnessCmd)
	configCmd.AddCommand(validateConfigCmd)
	wellnessCmd.AddCommand(wellnessPostCmd)
}

// main is the entry point
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
