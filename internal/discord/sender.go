// File: internal/discord/sender.go
package discord

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/metrics"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// Sender delivers messages to Discord channels
type Sender interface {
	SendMessage(ctx context.Context, channelID int64, content string) error
}

// MessageSession is the part of the gateway session used for delivery
type MessageSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SessionSender sends messages through an active gateway session with
// retries on transient failures
type SessionSender struct {
	session    MessageSession
	maxRetries int
	retryDelay time.Duration
	logger     *logrus.Logger

	metricsManager *metrics.Manager
}

// NewSessionSender creates a sender backed by the given session
func NewSessionSender(session MessageSession, maxRetries int, retryDelay time.Duration) *SessionSender {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &SessionSender{
		session:    session,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     utils.GetLogger(),
	}
}

// SetMetricsManager attaches a metrics manager for delivery counters
func (s *SessionSender) SetMetricsManager(m *metrics.Manager) {
	s.metricsManager = m
}

// SendMessage delivers content to a channel, retrying with exponential
// backoff on failure
func (s *SessionSender) SendMessage(ctx context.Context, channelID int64, content string) error {
	channel := strconv.FormatInt(channelID, 10)

	var lastErr error
	delay := s.retryDelay

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, err := s.session.ChannelMessageSend(channel, content)
		if err == nil {
			if s.metricsManager != nil {
				s.metricsManager.GetPrometheusMetrics().RecordMessageSent("channel")
			}
			return nil
		}

		lastErr = err
		s.logger.WithFields(logrus.Fields{
			"channel_id": channel,
			"attempt":    attempt,
			"error":      err.Error(),
		}).Warn("Failed to send Discord message, retrying")

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	if s.metricsManager != nil {
		s.metricsManager.GetPrometheusMetrics().RecordMessageFailure("channel")
	}
	return utils.NewAppError(utils.ErrCodeExternal,
		"Failed to send Discord message after retries", lastErr.Error())
}
