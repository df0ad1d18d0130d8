package commands

import (
	"encoding/base64"
	"os"
	"strings"
	"testing"

	"github.com/mfigueira/bananachat/internal/config"
	"github.com/mfigueira/bananachat/internal/models"
)

func resetFlags() {
	assistantFlag = ""
	aspectFlag = ""
	countFlag = 0
	imageFlags = nil
	saveDirFlag = ""
	baseURLFlag = ""
	verboseFlag = false
}

func TestApplyFlags(t *testing.T) {
	defer resetFlags()

	cfg := config.DefaultConfig()
	assistantFlag = "nano-banana-pro"
	aspectFlag = "16:9"
	countFlag = 2
	saveDirFlag = "/tmp/images"
	verboseFlag = true

	applyFlags(&cfg)

	if cfg.DefaultAssistant != "nano-banana-pro" {
		t.Errorf("DefaultAssistant = %q", cfg.DefaultAssistant)
	}
	if cfg.AspectRatio != "16:9" {
		t.Errorf("AspectRatio = %q", cfg.AspectRatio)
	}
	if cfg.GenerationCount != 2 {
		t.Errorf("GenerationCount = %d", cfg.GenerationCount)
	}
	if cfg.DownloadDir != "/tmp/images" {
		t.Errorf("DownloadDir = %q", cfg.DownloadDir)
	}
	if !cfg.Verbose {
		t.Error("Verbose not applied")
	}
}

func TestApplyFlags_UnsetFlagsKeepConfig(t *testing.T) {
	defer resetFlags()
	resetFlags()

	cfg := config.DefaultConfig()
	cfg.GenerationCount = 2
	cfg.AspectRatio = "1:1"

	applyFlags(&cfg)

	if cfg.GenerationCount != 2 || cfg.AspectRatio != "1:1" {
		t.Errorf("unset flags should not touch config: %+v", cfg)
	}
}

func TestTurnOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AspectRatio = "9:16"
	cfg.GenerationCount = 1

	opts := turnOptions(cfg)
	if opts.AspectRatio != "9:16" || opts.GenerationCount != 1 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestSaveOutcomeImages(t *testing.T) {
	dir := t.TempDir()
	data := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})

	msg := models.Message{Parts: []models.MessagePart{
		models.ImagePart("image/png", data),
		models.TextPart("⚠️ 1 generation(s) failed: unknown error"),
		models.ImagePart("image/png", data),
	}}

	paths, err := saveOutcomeImages(msg, dir)
	if err != nil {
		t.Fatalf("saveOutcomeImages failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("saved file missing: %v", err)
		}
	}
}

func TestSaveOutcomeImages_NoImages(t *testing.T) {
	msg := models.Message{Parts: []models.MessagePart{models.TextPart("🛑 Prompt rejected")}}

	paths, err := saveOutcomeImages(msg, t.TempDir())
	if err != nil {
		t.Fatalf("saveOutcomeImages failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("got %d paths, want 0", len(paths))
	}
}

func TestValidAssistant(t *testing.T) {
	if !validAssistant("nano-banana") || !validAssistant("nano-banana-pro") {
		t.Error("known assistants rejected")
	}
	if validAssistant("gpt") {
		t.Error("unknown assistant accepted")
	}
}

func TestContainsHelpers(t *testing.T) {
	if !contains(config.AvailableAspectRatios(), "16:9") {
		t.Error("16:9 should be available")
	}
	if contains(config.AvailableAspectRatios(), "21:9") {
		t.Error("21:9 should not be available")
	}
	if !containsInt(config.AvailableGenerationCounts(), 4) {
		t.Error("4 should be available")
	}
	if containsInt(config.AvailableGenerationCounts(), 3) {
		t.Error("3 should not be available")
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"chat", "sessions", "config"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestRunGenerate_EmptyPrompt(t *testing.T) {
	defer resetFlags()
	resetFlags()

	if err := runGenerate("   "); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("err = %v, want empty-prompt error", err)
	}
}
