package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfigueira/bananachat/internal/chat"
	"github.com/mfigueira/bananachat/internal/config"
	"github.com/mfigueira/bananachat/internal/genai"
	"github.com/mfigueira/bananachat/internal/logfeed"
	"github.com/mfigueira/bananachat/internal/models"
)

// Message types for the TUI
type (
	turnDoneMsg struct {
		outcome *chat.Outcome
		paths   []string
		err     error
	}

	speechDoneMsg struct {
		text string
		err  error
	}
)

// Model represents the TUI state
type Model struct {
	ctrl   *chat.Controller
	feed   *logfeed.Feed
	cfg    config.Config
	speech chat.SpeechCapture // nil when no recorder is available

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading bool
	ready   bool
	err     error
	showLog bool
	status  string

	// Saved image paths per model message id. History loaded from disk has
	// no saved paths; those messages render as image counts.
	savedPaths map[string][]string

	// Dimensions
	width  int
	height int
}

// NewModel creates the chat TUI model over a wired controller. speech may be
// nil; the /mic command then reports that no recorder is available.
func NewModel(ctrl *chat.Controller, feed *logfeed.Feed, cfg config.Config, speech chat.SpeechCapture) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the image you want... (/help for commands)"
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctrl:       ctrl,
		feed:       feed,
		cfg:        cfg,
		speech:     speech,
		textarea:   ta,
		spinner:    s,
		savedPaths: make(map[string][]string),
	}
}

// Run starts the interactive chat program.
func Run(ctrl *chat.Controller, feed *logfeed.Feed, cfg config.Config, speech chat.SpeechCapture) error {
	p := tea.NewProgram(NewModel(ctrl, feed, cfg, speech), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if !m.loading {
				return m, tea.Quit
			}

		case "ctrl+l":
			m.showLog = !m.showLog
			m.updateViewport()

		case "enter":
			if !m.loading && strings.TrimSpace(m.textarea.Value()) != "" {
				input := strings.TrimSpace(m.textarea.Value())
				m.textarea.Reset()
				return m.handleSubmit(input)
			}
		}

	case speechDoneMsg:
		if msg.err != nil {
			m.err = msg.err
		} else if text := strings.TrimSpace(msg.text); text != "" {
			m.textarea.SetValue(text)
			m.status = "Transcribed from microphone"
		} else {
			m.status = "Nothing was transcribed"
		}

	case turnDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.savedPaths[msg.outcome.ModelMessage.ID] = msg.paths
			m.status = turnStatus(msg.outcome)
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleSubmit interprets the input line: slash commands act on the session,
// everything else starts a generation turn.
func (m Model) handleSubmit(input string) (tea.Model, tea.Cmd) {
	if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
		return m, tea.Quit
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.loading = true
	m.err = nil
	m.status = ""
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.sendTurn(input),
		m.spinner.Tick,
	)
}

func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	mgr := m.ctrl.Manager()
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/help":
		m.status = "/new /next /assistant /title <t> /edit <text> /regen /delete /mic /log"

	case "/mic":
		if m.speech == nil {
			m.status = "No speech recorder configured"
			break
		}
		m.status = "Listening..."
		m.updateViewport()
		return m, m.captureSpeech()

	case "/new":
		mgr.NewSession()
		m.savedPaths = make(map[string][]string)
		m.status = "Started a new chat"

	case "/next":
		m.switchToNextSession()

	case "/assistant":
		active := mgr.ActiveSession()
		next := models.AssistantNanoBanana
		if active.AssistantID == models.AssistantNanoBanana.ID {
			next = models.AssistantNanoBananaPro
		}
		mgr.SetAssistant(active.ID, next.ID)
		m.status = fmt.Sprintf("Switched to %s %s", next.Icon, next.Name)

	case "/title":
		if arg == "" {
			m.status = "Usage: /title <new title>"
			break
		}
		mgr.RenameSession(mgr.ActiveSession().ID, arg)
		m.status = "Renamed"

	case "/regen":
		id := m.lastMessageID(models.RoleModel)
		if id == "" {
			m.status = "Nothing to regenerate"
			break
		}
		m.loading = true
		m.err = nil
		m.updateViewport()
		return m, tea.Batch(m.regenTurn(id), m.spinner.Tick)

	case "/edit":
		if arg == "" {
			m.status = "Usage: /edit <replacement text>"
			break
		}
		id := m.lastMessageID(models.RoleUser)
		if id == "" {
			m.status = "Nothing to edit"
			break
		}
		m.loading = true
		m.err = nil
		m.updateViewport()
		return m, tea.Batch(m.editTurn(id, arg), m.spinner.Tick)

	case "/delete":
		id := m.lastMessageID(models.RoleModel)
		if id == "" {
			m.status = "Nothing to delete"
			break
		}
		m.ctrl.DeleteMessage(id)
		m.status = "Deleted"

	case "/log":
		m.showLog = !m.showLog

	default:
		m.status = fmt.Sprintf("Unknown command: %s", name)
	}

	m.updateViewport()
	return m, nil
}

// switchToNextSession activates the session after the current one, wrapping.
func (m *Model) switchToNextSession() {
	mgr := m.ctrl.Manager()
	sessions := mgr.Sessions()
	if len(sessions) < 2 {
		m.status = "No other sessions"
		return
	}

	activeID := mgr.ActiveSession().ID
	for i, s := range sessions {
		if s.ID == activeID {
			next := sessions[(i+1)%len(sessions)]
			mgr.SetActive(next.ID)
			m.savedPaths = make(map[string][]string)
			m.status = fmt.Sprintf("Switched to %q", next.Title)
			return
		}
	}
}

// lastMessageID returns the id of the last message with the given role in the
// active session, or "".
func (m Model) lastMessageID(role string) string {
	mgr := m.ctrl.Manager()
	history := mgr.HistorySnapshot(mgr.ActiveSession().ID)
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == role {
			return history[i].ID
		}
	}
	return ""
}

func (m Model) turnOptions() chat.Options {
	return chat.Options{
		AspectRatio:     m.cfg.AspectRatio,
		GenerationCount: m.cfg.GenerationCount,
	}
}

// captureSpeech records one utterance and delivers the transcription to the
// update loop, which places it in the input box for review before sending.
func (m Model) captureSpeech() tea.Cmd {
	return func() tea.Msg {
		text, err := m.speech.Capture(context.Background())
		return speechDoneMsg{text: text, err: err}
	}
}

// sendTurn creates a command that runs one generation turn.
func (m Model) sendTurn(text string) tea.Cmd {
	return func() tea.Msg {
		return m.finishTurn(m.ctrl.Send(text, nil, m.turnOptions()))
	}
}

func (m Model) regenTurn(messageID string) tea.Cmd {
	return func() tea.Msg {
		return m.finishTurn(m.ctrl.Regenerate(messageID, m.turnOptions()))
	}
}

func (m Model) editTurn(messageID, newText string) tea.Cmd {
	return func() tea.Msg {
		return m.finishTurn(m.ctrl.EditAndRegenerate(messageID, newText, m.turnOptions()))
	}
}

// finishTurn saves the turn's images to the download directory and reports
// the result back to the update loop.
func (m Model) finishTurn(outcome *chat.Outcome) tea.Msg {
	if outcome == nil {
		return turnDoneMsg{err: fmt.Errorf("turn could not run")}
	}

	var paths []string
	seq := 0
	for _, part := range outcome.ModelMessage.Parts {
		if !part.IsImage() {
			continue
		}
		path, err := genai.SaveImagePart(part, m.cfg.DownloadDir, seq)
		if err != nil {
			m.feed.Warnf("failed to save image: %v", err)
			continue
		}
		paths = append(paths, path)
		seq++
	}

	if m.cfg.CopyToClipboard && len(paths) > 0 {
		if err := clipboard.WriteAll(paths[0]); err != nil {
			m.feed.Warnf("failed to copy path to clipboard: %v", err)
		}
	}

	return turnDoneMsg{outcome: outcome, paths: paths}
}

func turnStatus(o *chat.Outcome) string {
	switch {
	case o.Failed:
		return "Generation failed"
	case o.Partial():
		return fmt.Sprintf("%d image(s), %d generation(s) failed", o.ImageCount, o.FailedCount)
	default:
		return fmt.Sprintf("%d image(s) generated", o.ImageCount)
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	sections = append(sections, m.renderHeader(contentWidth))

	var messagesContent string
	if m.historyLen() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	var inputContent string
	if m.loading {
		assistant := m.activeAssistant()
		inputContent = fmt.Sprintf("%s %s",
			m.spinner.View(),
			loadingStyle.Render(fmt.Sprintf("%s generating %d images...", assistant.Icon, m.cfg.GenerationCount)))
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("⚠ %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) activeAssistant() models.Assistant {
	return models.AssistantByID(m.ctrl.Manager().ActiveSession().AssistantID)
}

func (m Model) historyLen() int {
	mgr := m.ctrl.Manager()
	return len(mgr.HistorySnapshot(mgr.ActiveSession().ID))
}

func (m Model) renderHeader(width int) string {
	active := m.ctrl.Manager().ActiveSession()
	assistant := models.AssistantByID(active.AssistantID)

	headerParts := []string{
		titleStyle.Render(assistant.Icon + " " + assistant.Name),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(active.Title),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(fmt.Sprintf("×%d %s", m.cfg.GenerationCount, m.cfg.AspectRatio)),
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	return headerStyle.Width(width).Render(headerContent)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	assistant := m.activeAssistant()
	icon := welcomeIconStyle.Width(width).Render(assistant.Icon)
	title := welcomeTitleStyle.Width(width).Render("Welcome to " + assistant.Name)
	subtitle := welcomeStyle.Width(width).Render("Describe an image to generate it")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	if m.status != "" {
		return statusBarStyle.Width(width).Align(lipgloss.Center).Render(
			statusDescStyle.Render(m.status))
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"Ctrl+L", "Log"},
		{"/help", "Commands"},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	mgr := m.ctrl.Manager()
	history := mgr.HistorySnapshot(mgr.ActiveSession().ID)
	assistant := m.activeAssistant()
	bubbleWidth := m.viewport.Width - 6

	var content strings.Builder
	for i, msg := range history {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			label := userLabelStyle.Render("⬤ You")
			body := msg.FirstText()
			if n := msg.ImageCount(); n > 0 {
				body += fmt.Sprintf("\n📎 %d attachment(s)", n)
			}
			bubble := userBubbleStyle.Width(bubbleWidth).Render(body)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render(assistant.Icon + " " + assistant.Name)
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(m.renderModelBody(msg))
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	if m.showLog {
		content.WriteString("\n" + m.renderLogPane(bubbleWidth))
	}

	m.viewport.SetContent(content.String())
}

// renderModelBody renders a model message: saved image paths when this
// process generated them, image counts for history loaded from disk, and any
// failure note text.
func (m Model) renderModelBody(msg models.Message) string {
	var lines []string

	if paths, ok := m.savedPaths[msg.ID]; ok && len(paths) > 0 {
		for _, p := range paths {
			lines = append(lines, imageLinkStyle.Render(p))
		}
	} else if n := msg.ImageCount(); n > 0 {
		lines = append(lines, fmt.Sprintf("🖼  %d image(s)", n))
	}

	if text := msg.FirstText(); text != "" {
		lines = append(lines, noteStyle.Render(text))
	}

	if len(lines) == 0 {
		lines = append(lines, hintStyle.Render("(no content)"))
	}

	return strings.Join(lines, "\n")
}

// renderLogPane renders the recent activity feed entries.
func (m Model) renderLogPane(width int) string {
	entries := m.feed.Entries()

	const maxShown = 10
	if len(entries) > maxShown {
		entries = entries[len(entries)-maxShown:]
	}

	var lines []string
	for _, e := range entries {
		style := logInfoStyle
		switch e.Level {
		case logfeed.LevelSuccess:
			style = logSuccessStyle
		case logfeed.LevelWarning:
			style = logWarningStyle
		case logfeed.LevelError:
			style = logErrorStyle
		}
		lines = append(lines, style.Render(
			e.Timestamp.Format("15:04:05")+" "+e.Message))
	}
	if len(lines) == 0 {
		lines = append(lines, logInfoStyle.Render("No activity yet"))
	}

	return logPaneStyle.Width(width).Render(strings.Join(lines, "\n"))
}
