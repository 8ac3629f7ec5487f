// File: internal/discord/bot.go
// Package discord runs the gateway bot that mirrors channel messages
// into the event ingestion endpoint.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/config"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// Bot mirrors Discord messages into the events API
type Bot struct {
	session   *discordgo.Session
	sender    *SessionSender
	eventsURL string
	prefix    string
	botUserID int64
	client    *http.Client
	logger    *logrus.Logger
}

// NewBot creates a Discord bot from configuration
func NewBot(cfg *config.DiscordConfig) (*Bot, error) {
	if cfg.Token == "" {
		return nil, utils.NewAppError(utils.ErrCodeConfiguration, "Discord bot token is required")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeConfiguration, "Failed to create Discord session", err.Error())
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		session:   session,
		sender:    NewSessionSender(session, cfg.SendRetries, cfg.SendRetryDelay),
		eventsURL: cfg.EventsURL,
		prefix:    cfg.CommandPrefix,
		botUserID: cfg.BotUserID,
		client:    &http.Client{Timeout: cfg.ForwardTimeout},
		logger:    utils.GetLogger(),
	}

	session.AddHandler(bot.onMessageCreate)
	session.AddHandler(bot.onReady)

	return bot, nil
}

// Sender returns the message sender backed by the bot's session
func (b *Bot) Sender() *SessionSender {
	return b.sender
}

// Start opens the gateway connection
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return utils.NewAppError(utils.ErrCodeConnection, "Failed to open Discord gateway", err.Error())
	}
	b.logger.Info("Discord bot connected")
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() error {
	if err := b.session.Close(); err != nil {
		return utils.NewAppError(utils.ErrCodeConnection, "Failed to close Discord gateway", err.Error())
	}
	b.logger.Info("Discord bot disconnected")
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if b.botUserID != 0 && parseSnowflake(r.User.ID) != b.botUserID {
		b.logger.WithFields(logrus.Fields{
			"gateway_user_id":    r.User.ID,
			"configured_user_id": b.botUserID,
		}).Warn("Gateway account does not match the configured bot user ID")
	}
	b.logger.WithField("username", r.User.Username).Info("Discord gateway ready")
}

// onMessageCreate forwards every channel message, bot messages included,
// to the events endpoint. The pipeline decides what to ignore. Prefixed
// command messages are not conversation and are dropped here.
func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if b.prefix != "" && strings.HasPrefix(m.Content, b.prefix) {
		b.logger.WithField("message_id", m.ID).Debug("Skipping command message")
		return
	}

	payload, err := MessageToPayload(ConvertMessage(m.Message))
	if err != nil {
		b.logger.WithField("error", err.Error()).Error("Failed to build message payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.client.Timeout+time.Second)
	defer cancel()

	if err := b.forward(ctx, payload); err != nil {
		b.logger.WithFields(logrus.Fields{
			"message_id": m.ID,
			"error":      err.Error(),
		}).Error("Failed to forward message event")
	}
}

// forward posts a payload to the event ingestion endpoint
func (b *Bot) forward(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.eventsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("events endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
