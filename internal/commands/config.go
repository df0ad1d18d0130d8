package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfigueira/bananachat/internal/chat"
	"github.com/mfigueira/bananachat/internal/config"
	"github.com/mfigueira/bananachat/internal/models"
	"github.com/mfigueira/bananachat/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change bananachat settings.

Without arguments the current configuration is printed. Use 'config set'
to change a value.`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Available keys:

  assistant   Default assistant (nano-banana, nano-banana-pro)
  aspect      Default aspect ratio (Default, 1:1, 16:9, 9:16, 4:3, 3:4)
  count       Parallel generations per turn (1, 2 or 4)
  clipboard   Copy saved image path to clipboard (true, false)
  verbose     Detailed logging (true, false)
  download-dir  Directory for generated images
  base-url    API endpoint override (empty resets to the default)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	assistant := models.AssistantByID(cfg.DefaultAssistant)

	fmt.Printf("assistant:     %s (%s %s)\n", cfg.DefaultAssistant, assistant.Icon, assistant.Name)
	fmt.Printf("aspect:        %s\n", cfg.AspectRatio)
	fmt.Printf("count:         %d\n", cfg.GenerationCount)
	fmt.Printf("clipboard:     %t\n", cfg.CopyToClipboard)
	fmt.Printf("verbose:       %t\n", cfg.Verbose)
	fmt.Printf("download-dir:  %s\n", cfg.DownloadDir)
	fmt.Printf("data-dir:      %s\n", cfg.DataDir)

	cache, err := store.NewLocalCache(cfg.DataDir)
	if err == nil {
		if baseURL := cache.Get(chat.KeyBaseURL); baseURL != "" {
			fmt.Printf("base-url:      %s\n", baseURL)
		}
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	switch key {
	case "assistant":
		if !validAssistant(value) {
			return fmt.Errorf("unknown assistant: %s", value)
		}
		cfg.DefaultAssistant = value
	case "aspect":
		if !contains(config.AvailableAspectRatios(), value) {
			return fmt.Errorf("invalid aspect ratio: %s (available: %s)",
				value, strings.Join(config.AvailableAspectRatios(), ", "))
		}
		cfg.AspectRatio = value
	case "count":
		n, err := strconv.Atoi(value)
		if err != nil || !containsInt(config.AvailableGenerationCounts(), n) {
			return fmt.Errorf("invalid generation count: %s (available: 1, 2, 4)", value)
		}
		cfg.GenerationCount = n
	case "clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.CopyToClipboard = b
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Verbose = b
	case "download-dir":
		cfg.DownloadDir = value
	case "base-url":
		// The endpoint override lives in the local cache, not the config
		// file, mirroring where the web client kept it.
		cache, err := store.NewLocalCache(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open local cache: %w", err)
		}
		if value == "" {
			if err := cache.Remove(chat.KeyBaseURL); err != nil {
				return err
			}
			fmt.Println("base-url reset to default")
			return nil
		}
		if err := cache.Set(chat.KeyBaseURL, value); err != nil {
			return err
		}
		fmt.Printf("base-url = %s\n", value)
		return nil
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func validAssistant(id string) bool {
	for _, a := range models.Assistants() {
		if a.ID == id {
			return true
		}
	}
	return false
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

func containsInt(items []int, v int) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
