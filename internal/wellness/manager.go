// File: internal/wellness/manager.go
// Package wellness generates and posts scheduled channel content on a
// rotating category schedule.
package wellness

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/discord"
	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/pipeline"
	"github.com/psyche-voyage/launchpad/internal/prompts"
	"github.com/psyche-voyage/launchpad/internal/storage"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// generated mirrors the structured completion for a content prompt
type generated struct {
	Content    string  `json:"content"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// Manager creates and posts wellness content
type Manager struct {
	completer    pipeline.Completer
	storage      storage.Storage
	sender       discord.Sender
	channelID    int64
	historyLimit int
	logger       *logrus.Logger

	metricsManager *metrics.Manager
}

// NewManager creates a wellness content manager
func NewManager(completer pipeline.Completer, store storage.Storage, sender discord.Sender, channelID int64, historyLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &Manager{
		completer:    completer,
		storage:      store,
		sender:       sender,
		channelID:    channelID,
		historyLimit: historyLimit,
		logger:       utils.GetLogger(),
	}
}

// SetMetricsManager attaches a metrics manager for post counters
func (m *Manager) SetMetricsManager(mm *metrics.Manager) {
	m.metricsManager = mm
}

// NextContentType returns the category to generate next, continuing the
// rotation from the most recently created content
func (m *Manager) NextContentType(ctx context.Context) (models.ContentType, error) {
	last, err := m.storage.GetLastContent(ctx, m.channelID)
	if err != nil {
		return "", err
	}
	if last == nil {
		return models.ContentTypes[0], nil
	}
	return models.NextContentType(last.ContentType), nil
}

// Generate creates a new piece of content for the given category,
// steering the model away from recently posted pieces
func (m *Manager) Generate(ctx context.Context, contentType models.ContentType) (*models.WellnessContent, error) {
	previous, err := m.storage.GetPostedContent(ctx, m.channelID, m.historyLimit)
	if err != nil {
		return nil, err
	}
	previousTexts := make([]string, 0, len(previous))
	for _, p := range previous {
		previousTexts = append(previousTexts, p.Content)
	}

	system, err := prompts.Render("wellness_system", prompts.WellnessData{
		ContentType:     string(contentType),
		PreviousContent: previousTexts,
	})
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeProcessing, "Failed to render wellness prompt", err.Error())
	}
	user, err := prompts.Render("wellness_user", prompts.WellnessData{
		ContentType: string(contentType),
	})
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeProcessing, "Failed to render wellness prompt", err.Error())
	}

	var result generated
	if _, err := m.completer.CreateStructuredCompletion(ctx, system, user, &result); err != nil {
		return nil, err
	}
	if result.Content == "" {
		return nil, utils.NewAppError(utils.ErrCodeProcessing, "Generated wellness content is empty")
	}

	content := &models.WellnessContent{
		Content:     result.Content,
		ContentType: contentType,
		ChannelID:   m.channelID,
		Reasoning:   result.Reasoning,
		Confidence:  result.Confidence,
		CreatedAt:   time.Now().UTC(),
	}
	if err := content.Validate(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeValidation, "Invalid wellness content", err.Error())
	}
	if err := m.storage.SaveWellnessContent(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

// GenerateAndPost runs one full cycle: pick the next category, generate
// content, send it to the channel and mark it posted
func (m *Manager) GenerateAndPost(ctx context.Context) (*models.WellnessContent, error) {
	contentType, err := m.NextContentType(ctx)
	if err != nil {
		return nil, err
	}

	content, err := m.Generate(ctx, contentType)
	if err != nil {
		m.recordPost(string(contentType), "error")
		return nil, err
	}

	if err := m.sender.SendMessage(ctx, m.channelID, content.Content); err != nil {
		m.recordPost(string(contentType), "error")
		return nil, err
	}

	if err := m.storage.MarkContentPosted(ctx, content.ID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	content.Posted = true
	content.PostedAt = &now

	m.recordPost(string(contentType), "success")
	m.logger.WithFields(logrus.Fields{
		"content_type": string(contentType),
		"channel_id":   m.channelID,
	}).Info("Wellness content posted")

	return content, nil
}

func (m *Manager) recordPost(contentType, status string) {
	if m.metricsManager != nil {
		m.metricsManager.GetPrometheusMetrics().RecordWellnessPost(contentType, status)
	}
}
