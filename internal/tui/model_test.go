package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfigueira/bananachat/internal/chat"
	"github.com/mfigueira/bananachat/internal/config"
	"github.com/mfigueira/bananachat/internal/genai"
	"github.com/mfigueira/bananachat/internal/logfeed"
	"github.com/mfigueira/bananachat/internal/models"
)

type memStore struct {
	sessions map[string]*models.Session
}

func (s *memStore) Upsert(sess *models.Session) error {
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *memStore) Delete(id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *memStore) ListAll() ([]*models.Session, error) {
	var out []*models.Session
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

type memCache struct {
	data map[string]string
}

func (c *memCache) Get(key string) string       { return c.data[key] }
func (c *memCache) Set(key, value string) error { c.data[key] = value; return nil }

func newTestModel(t *testing.T, gen genai.Generator) Model {
	t.Helper()

	feed := logfeed.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	mgr := chat.NewManager(
		&memStore{sessions: make(map[string]*models.Session)},
		&memCache{data: make(map[string]string)},
		feed,
	)
	if err := mgr.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	orch := chat.NewOrchestrator(gen, mgr, feed)
	ctrl := chat.NewController(mgr, orch, feed)

	cfg := config.DefaultConfig()
	cfg.DownloadDir = t.TempDir()
	cfg.GenerationCount = 1

	return NewModel(ctrl, feed, cfg, nil)
}

type fakeSpeech struct {
	text string
	err  error
}

func (f fakeSpeech) Capture(_ context.Context) (string, error) {
	return f.text, f.err
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestNewModel_NotReadyBeforeSize(t *testing.T) {
	m := newTestModel(t, &genai.MockGenerator{})

	if !strings.Contains(m.View(), "Initializing") {
		t.Error("unsized model should show the initializing screen")
	}

	m = sized(m)
	if !m.ready {
		t.Error("model should be ready after a window size message")
	}
}

func TestView_ShowsAssistantHeader(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))

	view := m.View()
	if !strings.Contains(view, "Nano Banana") {
		t.Errorf("header should name the assistant:\n%s", view)
	}
	if !strings.Contains(view, models.DefaultTitle) {
		t.Errorf("header should show the session title")
	}
}

func TestHandleCommand_AssistantToggle(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))

	updated, _ := m.handleCommand("/assistant")
	m = updated.(Model)

	active := m.ctrl.Manager().ActiveSession()
	if active.AssistantID != models.AssistantNanoBananaPro.ID {
		t.Errorf("AssistantID = %q, want pro", active.AssistantID)
	}

	updated, _ = m.handleCommand("/assistant")
	m = updated.(Model)
	if m.ctrl.Manager().ActiveSession().AssistantID != models.AssistantNanoBanana.ID {
		t.Error("second toggle should switch back")
	}
}

func TestHandleCommand_NewSession(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))
	before := len(m.ctrl.Manager().Sessions())

	updated, _ := m.handleCommand("/new")
	m = updated.(Model)

	if got := len(m.ctrl.Manager().Sessions()); got != before+1 {
		t.Errorf("sessions = %d, want %d", got, before+1)
	}
}

func TestHandleCommand_Title(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))

	updated, _ := m.handleCommand("/title Banana sketches")
	m = updated.(Model)

	if got := m.ctrl.Manager().ActiveSession().Title; got != "Banana sketches" {
		t.Errorf("Title = %q", got)
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))

	updated, _ := m.handleCommand("/frobnicate")
	m = updated.(Model)

	if !strings.Contains(m.status, "Unknown command") {
		t.Errorf("status = %q", m.status)
	}
}

func TestHandleCommand_MicWithoutRecorder(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))

	updated, cmd := m.handleCommand("/mic")
	m = updated.(Model)

	if cmd != nil {
		t.Error("mic without a recorder should not start a capture")
	}
	if !strings.Contains(m.status, "No speech recorder") {
		t.Errorf("status = %q", m.status)
	}
}

func TestHandleCommand_MicFillsInput(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))
	m.speech = fakeSpeech{text: "a banana on the moon"}

	updated, cmd := m.handleCommand("/mic")
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("mic with a recorder should start a capture")
	}

	msg := cmd()
	done, ok := msg.(speechDoneMsg)
	if !ok {
		t.Fatalf("got %T, want speechDoneMsg", msg)
	}

	next, _ := m.Update(done)
	m = next.(Model)
	if got := m.textarea.Value(); got != "a banana on the moon" {
		t.Errorf("textarea = %q, want the transcription", got)
	}
}

func TestHandleCommand_MicCaptureError(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))
	m.speech = fakeSpeech{err: errors.New("no input device")}

	_, cmd := m.handleCommand("/mic")
	if cmd == nil {
		t.Fatal("capture command expected")
	}

	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.err == nil || !strings.Contains(m.err.Error(), "no input device") {
		t.Errorf("err = %v, want the capture error surfaced", m.err)
	}
}

func TestHandleCommand_RegenWithEmptyHistory(t *testing.T) {
	m := sized(newTestModel(t, &genai.MockGenerator{}))

	updated, cmd := m.handleCommand("/regen")
	m = updated.(Model)

	if cmd != nil {
		t.Error("regen with no history should not start a turn")
	}
	if m.loading {
		t.Error("model should not be loading")
	}
}

func TestTurn_SendAndRender(t *testing.T) {
	gen := &genai.MockGenerator{
		Results: []genai.MockResult{
			{Parts: []models.MessagePart{models.ImagePart("image/png", "QUJD")}},
		},
	}
	m := sized(newTestModel(t, gen))

	msg := m.finishTurn(m.ctrl.Send("a banana", nil, m.turnOptions()))
	done, ok := msg.(turnDoneMsg)
	if !ok {
		t.Fatalf("got %T, want turnDoneMsg", msg)
	}
	if done.err != nil {
		t.Fatalf("turn failed: %v", done.err)
	}
	if len(done.paths) != 1 {
		t.Fatalf("got %d saved paths, want 1", len(done.paths))
	}

	updated, _ := m.Update(done)
	m = updated.(Model)

	if m.loading {
		t.Error("loading should clear after the turn")
	}
	m.updateViewport()
	if !strings.Contains(m.viewport.View(), "a banana") {
		t.Error("viewport should show the user prompt")
	}
}

func TestTurnStatus(t *testing.T) {
	full := &chat.Outcome{Failed: true}
	if got := turnStatus(full); got != "Generation failed" {
		t.Errorf("full failure status = %q", got)
	}

	partial := &chat.Outcome{ImageCount: 2, FailedCount: 2}
	if got := turnStatus(partial); !strings.Contains(got, "2 generation(s) failed") {
		t.Errorf("partial status = %q", got)
	}

	success := &chat.Outcome{ImageCount: 4}
	if got := turnStatus(success); !strings.Contains(got, "4 image(s)") {
		t.Errorf("success status = %q", got)
	}
}

func TestLastMessageID(t *testing.T) {
	gen := &genai.MockGenerator{
		Results: []genai.MockResult{
			{Parts: []models.MessagePart{models.ImagePart("image/png", "QUJD")}},
		},
	}
	m := sized(newTestModel(t, gen))

	if got := m.lastMessageID(models.RoleModel); got != "" {
		t.Errorf("empty history id = %q", got)
	}

	outcome := m.ctrl.Send("hello", nil, m.turnOptions())
	if got := m.lastMessageID(models.RoleModel); got != outcome.ModelMessage.ID {
		t.Errorf("last model id = %q, want %q", got, outcome.ModelMessage.ID)
	}
	if got := m.lastMessageID(models.RoleUser); got != outcome.UserMessage.ID {
		t.Errorf("last user id = %q, want %q", got, outcome.UserMessage.ID)
	}
}
