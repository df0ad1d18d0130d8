package commands

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mfigueira/bananachat/internal/genai"
	"github.com/mfigueira/bananachat/internal/models"
)

var (
	colorText    = lipgloss.Color("#c0caf5")
	colorTextDim = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorError   = lipgloss.Color("#f7768e")
	colorPrimary = lipgloss.Color("#e0af68")
)

var spinnerColors = []lipgloss.Color{
	lipgloss.Color("#e0af68"), // Banana yellow
	lipgloss.Color("#ff9e64"), // Orange
	lipgloss.Color("#9ece6a"), // Green
	lipgloss.Color("#7aa2f7"), // Blue
}

// spinner handles the animated loading indicator
type spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(os.Stderr, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(os.Stderr, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := spinnerColors[s.frame%len(spinnerColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])
	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(os.Stderr, "\r\033[K%s %s", spinnerChar, msg)
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(os.Stderr, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runGenerate executes one turn against the active session and saves the
// generated images to the download directory.
func runGenerate(prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(imageFlags) == 0 {
		return fmt.Errorf("prompt cannot be empty")
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	// Load attachments before committing the turn.
	var attachments []models.Attachment
	for _, path := range imageFlags {
		att, err := genai.LoadAttachment(path)
		if err != nil {
			return fmt.Errorf("failed to load attachment: %w", err)
		}
		attachments = append(attachments, att)
	}

	mgr := app.Controller.Manager()
	active := mgr.ActiveSession()
	if assistantFlag != "" {
		mgr.SetAssistant(active.ID, assistantFlag)
	}

	assistant := models.AssistantByID(active.AssistantID)
	decorated := isStderrTTY()

	var spin *spinner
	if decorated {
		spin = newSpinner(fmt.Sprintf("%s generating %d images", assistant.Icon, app.Config.GenerationCount))
		spin.start()
	}

	outcome := app.Controller.Send(prompt, attachments, turnOptions(app.Config))
	if outcome == nil {
		if decorated {
			spin.stopWithError()
		}
		return fmt.Errorf("no active session")
	}

	switch {
	case outcome.Failed:
		if decorated {
			spin.stopWithError()
		}
		fmt.Fprintln(os.Stderr, renderFailure(outcome.Failure.Render()))
		return fmt.Errorf("generation failed")
	case outcome.Partial():
		if decorated {
			spin.stopWithSuccess(fmt.Sprintf("%d of %d generations succeeded",
				outcome.ImageCount, app.Config.GenerationCount))
		}
	default:
		if decorated {
			spin.stopWithSuccess(fmt.Sprintf("Generated %d images", outcome.ImageCount))
		}
	}

	paths, err := saveOutcomeImages(outcome.ModelMessage, app.Config.DownloadDir)
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Println(p)
	}
	if note := outcome.ModelMessage.FirstText(); note != "" && decorated {
		fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorTextDim).Render(note))
	}

	if app.Config.CopyToClipboard && len(paths) > 0 {
		if err := clipboard.WriteAll(paths[0]); err != nil {
			app.Feed.Warnf("failed to copy path to clipboard: %v", err)
		} else if decorated {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Path copied to clipboard"))
		}
	}

	return nil
}

// saveOutcomeImages writes every inline image of the merged reply to dir and
// returns the saved paths in merge order.
func saveOutcomeImages(msg models.Message, dir string) ([]string, error) {
	var paths []string
	seq := 0
	for _, part := range msg.Parts {
		if !part.IsImage() {
			continue
		}
		path, err := genai.SaveImagePart(part, dir, seq)
		if err != nil {
			return paths, fmt.Errorf("failed to save image: %w", err)
		}
		paths = append(paths, path)
		seq++
	}
	return paths, nil
}

func renderFailure(text string) string {
	return lipgloss.NewStyle().Foreground(colorError).Render(text)
}

// isStderrTTY reports whether stderr is connected to a terminal. Decorated
// output and the spinner are suppressed when piping.
func isStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
