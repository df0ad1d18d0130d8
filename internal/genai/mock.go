package genai

import (
	"sync"
	"time"

	"github.com/mfigueira/bananachat/internal/models"
)

// MockResult is one scripted outcome for the mock generator.
type MockResult struct {
	Parts []models.MessagePart
	Err   error
	// Delay holds the response open so tests can exercise concurrent
	// callers.
	Delay time.Duration
}

// MockGenerator is a scripted Generator implementation for testing. Each call
// consumes the next MockResult in call-arrival order; with concurrent callers
// that order is scheduler-dependent, so tests asserting which caller received
// which result must key on result content, not on script position.
type MockGenerator struct {
	mu      sync.Mutex
	Results []MockResult

	// Call recorders
	Calls       int
	LastPrompt  string
	Prompts     []string
	LastOptions *GenerateOptions
}

// Ensure MockGenerator implements Generator
var _ Generator = (*MockGenerator)(nil)

func (m *MockGenerator) GenerateContent(prompt string, attachments []models.Attachment, opts *GenerateOptions) ([]models.MessagePart, error) {
	m.mu.Lock()
	idx := m.Calls
	m.Calls++
	m.LastPrompt = prompt
	m.Prompts = append(m.Prompts, prompt)
	m.LastOptions = opts

	var res MockResult
	if idx < len(m.Results) {
		res = m.Results[idx]
	}
	m.mu.Unlock()

	if res.Delay > 0 {
		time.Sleep(res.Delay)
	}

	return res.Parts, res.Err
}
