// File: internal/pipeline/reply.go
package pipeline

import (
	"context"

	"github.com/psyche-voyage/launchpad/internal/discord"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// ReplyNode delivers the generated response back to the source channel
type ReplyNode struct {
	sender discord.Sender
}

// NewReplyNode creates the delivery node
func NewReplyNode(sender discord.Sender) *ReplyNode {
	return &ReplyNode{sender: sender}
}

func (n *ReplyNode) Name() string { return NodeReply }

// Process sends the generated reply. Ignored messages succeed without a
// send; a missing or empty reply for an answerable message is a failure.
func (n *ReplyNode) Process(ctx context.Context, tc *models.TaskContext) error {
	if intentOf(tc) == models.IntentIgnore {
		tc.SetResult(n.Name(), models.NodeResult{
			ResponseModel: map[string]interface{}{"sent": false, "skipped": true},
		})
		return nil
	}

	result, ok := tc.Result(NodeRespond)
	if !ok {
		return utils.NewAppError(utils.ErrCodeProcessing, "Reply delivery requires a prior response result")
	}
	reply, ok := result.ResponseModel.(*models.Reply)
	if !ok || reply.Response == "" {
		return utils.NewAppError(utils.ErrCodeProcessing, "Generated response is empty")
	}

	channelID, ok := tc.Event.DataInt64("channel_id")
	if !ok {
		return utils.NewAppError(utils.ErrCodeValidation, "Event payload has no channel_id")
	}

	if err := n.sender.SendMessage(ctx, channelID, reply.Response); err != nil {
		return err
	}

	tc.SetResult(n.Name(), models.NodeResult{
		ResponseModel: map[string]interface{}{"sent": true, "channel_id": channelID},
	})
	return nil
}
