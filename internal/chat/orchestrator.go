package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	apierrors "github.com/mfigueira/bananachat/internal/errors"
	"github.com/mfigueira/bananachat/internal/genai"
	"github.com/mfigueira/bananachat/internal/logfeed"
	"github.com/mfigueira/bananachat/internal/models"
)

// DefaultGenerationCount is the batch size used when options carry none.
const DefaultGenerationCount = 4

const titleLimit = 30

// Options control one generation turn.
type Options struct {
	// AspectRatio is a concrete ratio token, or the "Default" sentinel
	// (or empty) meaning omit.
	AspectRatio string
	// GenerationCount is how many parallel requests the turn fans out
	// into. Zero or negative falls back to the default.
	GenerationCount int
}

// Outcome reports how a turn resolved. Exactly one model message is produced
// per run, whatever the failure mix.
type Outcome struct {
	SessionID    string
	UserMessage  models.Message
	ModelMessage models.Message
	ImageCount   int
	FailedCount  int
	// Failed means every request in the batch failed; Failure carries the
	// classified turn-level error in that case.
	Failed  bool
	Failure *apierrors.TurnFailure
}

// Partial reports whether the turn mixed successes and failures.
func (o *Outcome) Partial() bool {
	return !o.Failed && o.FailedCount > 0
}

// Orchestrator turns one user submission into exactly one assistant message.
// It fans the turn out into N concurrent generation calls, observes every
// outcome, and merges successes and failures deterministically.
type Orchestrator struct {
	gen  genai.Generator
	mgr  *Manager
	feed *logfeed.Feed
}

// NewOrchestrator creates an orchestrator over the given generator and
// session manager.
func NewOrchestrator(gen genai.Generator, mgr *Manager, feed *logfeed.Feed) *Orchestrator {
	if feed == nil {
		feed = logfeed.New(nil)
	}
	return &Orchestrator{
		gen:  gen,
		mgr:  mgr,
		feed: feed,
	}
}

// batchResult is one request's outcome, kept at its submission index.
type batchResult struct {
	parts []models.MessagePart
	err   error
}

// Run executes one turn against the session addressed by sessionID. The user
// message is committed and persisted before any remote call is issued, so a
// crash mid-generation never loses the user's input. All requests run to
// completion; the merge never observes a partially settled batch.
func (o *Orchestrator) Run(sessionID, text string, attachments []models.Attachment, historyPrefix []models.Message, autoTitle bool, opts Options) *Outcome {
	session := o.mgr.SessionByID(sessionID)
	if session == nil {
		return nil
	}
	assistant := models.AssistantByID(session.AssistantID)

	userMsg := buildUserMessage(text, attachments)

	withUser := make([]models.Message, 0, len(historyPrefix)+2)
	withUser = append(withUser, historyPrefix...)
	withUser = append(withUser, userMsg)

	var newTitle string
	if autoTitle && len(historyPrefix) == 0 {
		newTitle = deriveTitle(text)
	}

	o.mgr.ReplaceMessages(sessionID, withUser, newTitle)

	count := opts.GenerationCount
	if count < 1 {
		count = DefaultGenerationCount
	}

	genOpts := &genai.GenerateOptions{
		Model:             assistant.Model,
		SystemInstruction: assistant.SystemInstruction,
	}
	if opts.AspectRatio != "" && opts.AspectRatio != "Default" {
		genOpts.AspectRatio = opts.AspectRatio
		o.feed.Infof("using aspect ratio %s", opts.AspectRatio)
	}

	o.feed.Infof("starting task: %d generation(s) with %s", count, assistant.Model)

	results := o.runBatch(text, attachments, genOpts, count)

	modelMsg, outcome := o.merge(results)
	outcome.SessionID = sessionID
	outcome.UserMessage = userMsg
	outcome.ModelMessage = modelMsg

	o.mgr.ReplaceMessages(sessionID, append(withUser, modelMsg), "")
	return outcome
}

// runBatch issues count independent requests concurrently and awaits them
// jointly. Requests never short-circuit one another and are not retried.
func (o *Orchestrator) runBatch(text string, attachments []models.Attachment, genOpts *genai.GenerateOptions, count int) []batchResult {
	results := make([]batchResult, count)

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.feed.Infof("dispatching request %d/%d...", i+1, count)
			parts, err := o.gen.GenerateContent(text, attachments, genOpts)
			if err != nil {
				o.feed.Errorf("❌ request %d failed: %v", i+1, err)
			} else {
				o.feed.Successf("✅ request %d returned", i+1)
			}
			results[i] = batchResult{parts: parts, err: err}
		}(i)
	}
	wg.Wait()

	return results
}

// merge applies the merge policy: image parts of successful requests in
// submission order, then either a trailing failure summary (partial success)
// or a single classified error explanation (full failure).
func (o *Orchestrator) merge(results []batchResult) (models.Message, *Outcome) {
	var combined []models.MessagePart
	var failures []string
	var firstErr error

	for i, res := range results {
		if res.err != nil {
			failures = append(failures, res.err.Error())
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}

		images := imageParts(res.parts)
		if len(images) == 0 {
			// An image-only assistant returned text: discarded, not
			// surfaced.
			o.feed.Warnf("⚠️ request %d returned a result with no images", i+1)
		}
		combined = append(combined, images...)
	}

	outcome := &Outcome{FailedCount: len(failures)}

	if len(combined) == 0 && len(failures) > 0 {
		failure := apierrors.Classify(firstErr)
		outcome.Failed = true
		outcome.Failure = failure
		o.feed.Errorf("❌ task failed entirely: %v", firstErr)

		return models.Message{
			ID:        models.NewMessageID(),
			Role:      models.RoleModel,
			Parts:     []models.MessagePart{models.TextPart(failure.Render())},
			Timestamp: time.Now().UnixMilli(),
		}, outcome
	}

	if len(failures) > 0 {
		combined = append(combined, models.TextPart(failureNote(failures)))
		o.feed.Warnf("task partially complete, %d failure(s)", len(failures))
	} else {
		o.feed.Successf("task complete, %d image(s) generated", len(combined))
	}

	outcome.ImageCount = len(combined) - boolToInt(len(failures) > 0)

	return models.Message{
		ID:        models.NewMessageID(),
		Role:      models.RoleModel,
		Parts:     combined,
		Timestamp: time.Now().UnixMilli(),
	}, outcome
}

// buildUserMessage assembles the user message: text part first, then each
// attachment as an inline-data part.
func buildUserMessage(text string, attachments []models.Attachment) models.Message {
	var parts []models.MessagePart
	if text != "" {
		parts = append(parts, models.TextPart(text))
	}
	for _, att := range attachments {
		parts = append(parts, att.Part())
	}

	return models.Message{
		ID:        models.NewMessageID(),
		Role:      models.RoleUser,
		Parts:     parts,
		Timestamp: time.Now().UnixMilli(),
	}
}

// deriveTitle takes the first 30 characters of the prompt, marking
// truncation with an ellipsis.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "..."
}

// failureNote builds the trailing summary part for a partial success:
// failure count plus one categorized reason per distinct error string.
// Duplicate error strings are deduplicated before categorization.
func failureNote(failures []string) string {
	seen := make(map[string]bool, len(failures))
	var categories []string
	for _, f := range failures {
		if seen[f] {
			continue
		}
		seen[f] = true
		categories = append(categories, apierrors.Categorize(f))
	}

	return fmt.Sprintf("⚠️ %d generation(s) failed: %s", len(failures), strings.Join(categories, ", "))
}

func imageParts(parts []models.MessagePart) []models.MessagePart {
	var images []models.MessagePart
	for _, p := range parts {
		if p.IsImage() {
			images = append(images, p)
		}
	}
	return images
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
