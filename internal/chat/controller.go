package chat

import (
	"github.com/mfigueira/bananachat/internal/logfeed"
	"github.com/mfigueira/bananachat/internal/models"
)

// Controller exposes the four entry points the UI invokes. Each computes the
// history slice to feed the orchestrator, or splices the history directly.
// Operations on unknown message ids are silent no-ops (nil Outcome).
//
// The controller imposes no single-flight constraint of its own; mutual
// exclusion of concurrent turns is the UI layer's job.
type Controller struct {
	mgr  *Manager
	orch *Orchestrator
	feed *logfeed.Feed
}

// NewController wires the controller over a manager and orchestrator.
func NewController(mgr *Manager, orch *Orchestrator, feed *logfeed.Feed) *Controller {
	if feed == nil {
		feed = logfeed.New(nil)
	}
	return &Controller{
		mgr:  mgr,
		orch: orch,
		feed: feed,
	}
}

// Manager returns the underlying session manager.
func (c *Controller) Manager() *Manager {
	return c.mgr
}

// Send runs a turn against the full history of the active session.
// Auto-titling applies only to the first turn of a session that still bears
// its placeholder title.
func (c *Controller) Send(text string, attachments []models.Attachment, opts Options) *Outcome {
	active := c.mgr.ActiveSession()
	if active == nil {
		return nil
	}

	history := c.mgr.HistorySnapshot(active.ID)
	autoTitle := active.Title == models.DefaultTitle

	return c.orch.Run(active.ID, text, attachments, history, autoTitle, opts)
}

// EditAndRegenerate replaces a message's text (its attachments are carried
// forward unchanged) and regenerates. Every message from the edited one
// onward is discarded and replaced by the new turn's output.
func (c *Controller) EditAndRegenerate(messageID, newText string, opts Options) *Outcome {
	active := c.mgr.ActiveSession()
	if active == nil {
		return nil
	}

	history := c.mgr.HistorySnapshot(active.ID)
	idx := indexOf(history, messageID)
	if idx == -1 {
		return nil
	}

	attachments := history[idx].AttachmentParts()
	prefix := history[:idx]

	c.feed.Infof("editing message and regenerating")
	return c.orch.Run(active.ID, newText, attachments, prefix, false, opts)
}

// Regenerate re-runs the turn a message belongs to, reusing the original
// user text and attachments verbatim. A model message resolves to the user
// message immediately preceding it; without a valid one this is a no-op.
func (c *Controller) Regenerate(messageID string, opts Options) *Outcome {
	active := c.mgr.ActiveSession()
	if active == nil {
		return nil
	}

	history := c.mgr.HistorySnapshot(active.ID)
	idx := indexOf(history, messageID)
	if idx == -1 {
		return nil
	}

	if history[idx].Role == models.RoleModel {
		idx--
	}
	if idx < 0 || history[idx].Role != models.RoleUser {
		return nil
	}

	userMsg := history[idx]
	text := userMsg.FirstText()
	attachments := userMsg.AttachmentParts()
	prefix := history[:idx]

	c.feed.Infof("regenerating message")
	return c.orch.Run(active.ID, text, attachments, prefix, false, opts)
}

// DeleteMessage splices a message out of the active session's history. A
// user message immediately followed by its model response takes the response
// with it; any other message is removed alone. The orchestrator is not
// involved.
func (c *Controller) DeleteMessage(messageID string) {
	active := c.mgr.ActiveSession()
	if active == nil {
		return
	}

	history := c.mgr.HistorySnapshot(active.ID)
	idx := indexOf(history, messageID)
	if idx == -1 {
		return
	}

	deleteCount := 1
	if history[idx].Role == models.RoleUser &&
		idx+1 < len(history) && history[idx+1].Role == models.RoleModel {
		deleteCount = 2
	}

	spliced := make([]models.Message, 0, len(history)-deleteCount)
	spliced = append(spliced, history[:idx]...)
	spliced = append(spliced, history[idx+deleteCount:]...)

	c.mgr.ReplaceMessages(active.ID, spliced, "")
}

func indexOf(history []models.Message, messageID string) int {
	for i := range history {
		if history[i].ID == messageID {
			return i
		}
	}
	return -1
}
