// File: internal/pipeline/analyze.go
package pipeline

import (
	"context"

	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/prompts"
	"github.com/psyche-voyage/launchpad/internal/storage"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// Node names as stored in the task context
const (
	NodeAnalyze = "AnalyzeMessage"
	NodeRespond = "GenerateResponse"
	NodeReply   = "SendReply"
)

// AnalyzeNode classifies an inbound message into an intent category
type AnalyzeNode struct {
	completer    Completer
	storage      storage.Storage
	historyLimit int
}

// NewAnalyzeNode creates the classification node
func NewAnalyzeNode(completer Completer, store storage.Storage, historyLimit int) *AnalyzeNode {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &AnalyzeNode{
		completer:    completer,
		storage:      store,
		historyLimit: historyLimit,
	}
}

func (n *AnalyzeNode) Name() string { return NodeAnalyze }

// Process classifies the event's message. Messages authored by bots are
// ignored outright without a model call.
func (n *AnalyzeNode) Process(ctx context.Context, tc *models.TaskContext) error {
	event := tc.Event

	if isBotAuthor(event) {
		tc.SetResult(n.Name(), models.NodeResult{
			ResponseModel: &models.Analysis{
				Intent:     models.IntentIgnore,
				Reasoning:  "message authored by a bot",
				Confidence: 1.0,
			},
		})
		return nil
	}

	history, err := n.channelHistory(ctx, event)
	if err != nil {
		return err
	}

	categories := make([]string, 0, len(models.Intents))
	for _, intent := range models.Intents {
		categories = append(categories, string(intent))
	}

	system, err := prompts.Render("analyze_system", prompts.AnalyzeData{
		Categories: categories,
	})
	if err != nil {
		return utils.NewAppError(utils.ErrCodeProcessing, "Failed to render analysis prompt", err.Error())
	}
	user, err := prompts.Render("analyze_user", prompts.AnalyzeData{
		Content: event.DataString("content"),
		Author:  authorName(event),
		History: history,
	})
	if err != nil {
		return utils.NewAppError(utils.ErrCodeProcessing, "Failed to render analysis prompt", err.Error())
	}

	var analysis models.Analysis
	usage, err := n.completer.CreateStructuredCompletion(ctx, system, user, &analysis)
	if err != nil {
		return err
	}
	if !analysis.Intent.Valid() {
		analysis.Intent = models.IntentIgnore
	}

	tc.SetResult(n.Name(), models.NodeResult{
		ResponseModel: &analysis,
		Usage:         usage,
	})
	return nil
}

// channelHistory loads recent channel messages as prompt entries,
// excluding the event being processed
func (n *AnalyzeNode) channelHistory(ctx context.Context, event *models.Event) ([]prompts.HistoryEntry, error) {
	channelID, ok := event.DataInt64("channel_id")
	if !ok {
		return nil, nil
	}

	events, err := n.storage.GetChannelHistory(ctx, channelID, n.historyLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]prompts.HistoryEntry, 0, len(events))
	for _, e := range events {
		if e.ID == event.ID {
			continue
		}
		entries = append(entries, prompts.HistoryEntry{
			Author:  authorName(e),
			Content: e.DataString("content"),
		})
	}
	return entries, nil
}

// isBotAuthor reports whether the event's message was written by a bot
func isBotAuthor(event *models.Event) bool {
	author, ok := event.Data["author"].(map[string]interface{})
	if !ok {
		return false
	}
	bot, _ := author["bot"].(bool)
	return bot
}

// authorName extracts the author username from the event payload
func authorName(event *models.Event) string {
	author, ok := event.Data["author"].(map[string]interface{})
	if !ok {
		return "unknown"
	}
	if name, ok := author["username"].(string); ok && name != "" {
		return name
	}
	return "unknown"
}
