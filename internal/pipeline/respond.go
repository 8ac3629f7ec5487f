// File: internal/pipeline/respond.go
package pipeline

import (
	"context"

	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/prompts"
	"github.com/psyche-voyage/launchpad/internal/storage"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// RespondNode generates a reply grounded in the knowledge base
type RespondNode struct {
	completer      Completer
	searcher       Searcher
	storage        storage.Storage
	historyLimit   int
	retrievalLimit int
}

// NewRespondNode creates the response generation node
func NewRespondNode(completer Completer, searcher Searcher, store storage.Storage, historyLimit, retrievalLimit int) *RespondNode {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	if retrievalLimit <= 0 {
		retrievalLimit = 10
	}
	return &RespondNode{
		completer:      completer,
		searcher:       searcher,
		storage:        store,
		historyLimit:   historyLimit,
		retrievalLimit: retrievalLimit,
	}
}

func (n *RespondNode) Name() string { return NodeRespond }

// Process generates a reply for the classified message. Messages
// classified as ignore are skipped without a model call.
func (n *RespondNode) Process(ctx context.Context, tc *models.TaskContext) error {
	intent := intentOf(tc)
	if intent == "" {
		return utils.NewAppError(utils.ErrCodeProcessing, "Response generation requires a prior analysis result")
	}
	if intent == models.IntentIgnore {
		tc.SetResult(n.Name(), models.NodeResult{ResponseModel: &models.Reply{}})
		return nil
	}

	event := tc.Event
	content := event.DataString("content")

	docs, err := n.searcher.Search(ctx, content, string(intent), n.retrievalLimit)
	if err != nil {
		return err
	}
	passages := make([]string, 0, len(docs))
	for _, doc := range docs {
		passages = append(passages, doc.Content)
	}

	history, err := n.channelHistory(ctx, event)
	if err != nil {
		return err
	}

	system, err := prompts.Render("respond_system", prompts.RespondData{
		Intent:    string(intent),
		Documents: passages,
	})
	if err != nil {
		return utils.NewAppError(utils.ErrCodeProcessing, "Failed to render response prompt", err.Error())
	}
	user, err := prompts.Render("respond_user", prompts.RespondData{
		Content: content,
		Author:  authorName(event),
		History: history,
	})
	if err != nil {
		return utils.NewAppError(utils.ErrCodeProcessing, "Failed to render response prompt", err.Error())
	}

	var reply models.Reply
	usage, err := n.completer.CreateStructuredCompletion(ctx, system, user, &reply)
	if err != nil {
		return err
	}

	tc.SetResult(n.Name(), models.NodeResult{
		ResponseModel: &reply,
		Usage:         usage,
	})
	return nil
}

func (n *RespondNode) channelHistory(ctx context.Context, event *models.Event) ([]prompts.HistoryEntry, error) {
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
