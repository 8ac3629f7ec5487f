// File: internal/llm/client.go
// Package llm wraps the OpenAI API for structured completions and
// embeddings.
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/config"
	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// Client provides structured completions and embeddings
type Client struct {
	api            *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	timeout        time.Duration
	logger         *logrus.Logger

	metricsManager *metrics.Manager
}

// NewClient creates an LLM client from configuration
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, utils.NewAppError(utils.ErrCodeConfiguration, "OpenAI API key is required")
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:            openai.NewClientWithConfig(apiConfig),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    float32(cfg.Temperature),
		timeout:        cfg.RequestTimeout,
		logger:         utils.GetLogger(),
	}, nil
}

// SetMetricsManager attaches a metrics manager for request counters
func (c *Client) SetMetricsManager(m *metrics.Manager) {
	c.metricsManager = m
}

// CreateStructuredCompletion runs a chat completion in JSON mode and
// unmarshals the reply into result. Token usage for the call is returned
// alongside.
func (c *Client) CreateStructuredCompletion(ctx context.Context, system, user string, result interface{}) (*models.TokenUsage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	c.recordRequest("completion", err, start)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeExternal, "chat completion failed", err.Error())
	}
	if len(resp.Choices) == 0 {
		return nil, utils.NewAppError(utils.ErrCodeExternal, "chat completion returned no choices")
	}
	if c.metricsManager != nil {
		c.metricsManager.GetPrometheusMetrics().RecordLLMTokens(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	content := resp.Choices[0].Message.Content
	c.logger.WithFields(logrus.Fields{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("LLM completion received")

	if err := json.Unmarshal([]byte(stripFences(content)), result); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeExternal,
			"failed to parse completion as JSON", truncate(content, 200))
	}

	return &models.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// CreateEmbedding returns the embedding vector for a single text
func (c *Client) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: []string{text},
	})
	c.recordRequest("embedding", err, start)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeExternal, "embedding request failed", err.Error())
	}
	if len(resp.Data) == 0 {
		return nil, utils.NewAppError(utils.ErrCodeExternal, "embedding request returned no data")
	}
	return resp.Data[0].Embedding, nil
}

// EmbeddingFunc adapts the client to the vector store's embedding callback
func (c *Client) EmbeddingFunc() func(ctx context.Context, text string) ([]float32, error) {
	return c.CreateEmbedding
}

func (c *Client) recordRequest(operation string, err error, start time.Time) {
	if c.metricsManager == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metricsManager.GetPrometheusMetrics().RecordLLMRequest(operation, status, time.Since(start))
}

// stripFences tolerates models that wrap JSON output in markdown fences
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
