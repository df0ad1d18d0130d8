// Package config handles configuration for bananachat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mfigueira/bananachat/internal/models"
)

// AspectDefault is the sentinel meaning "let the server pick a ratio".
const AspectDefault = "Default"

// DefaultGenerationCount is the number of parallel generations per turn.
const DefaultGenerationCount = 4

// Config represents the user configuration
type Config struct {
	DefaultAssistant string `json:"default_assistant"`
	// AspectRatio is the default ratio token for new turns; AspectDefault
	// omits the image configuration entirely.
	AspectRatio string `json:"aspect_ratio"`
	// GenerationCount is how many generations each turn fans out into.
	// The UI offers 1, 2 and 4.
	GenerationCount int `json:"generation_count"`
	// Verbose enables detailed logging output during operations.
	Verbose         bool   `json:"verbose"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	DownloadDir     string `json:"download_dir,omitempty"` // Directory for saving images
	DataDir         string `json:"data_dir,omitempty"`     // Directory for session storage
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		DefaultAssistant: models.DefaultAssistantID,
		AspectRatio:      AspectDefault,
		GenerationCount:  DefaultGenerationCount,
		Verbose:          false,
		CopyToClipboard:  false,
		DownloadDir:      filepath.Join(homeDir, ".bananachat", "images"),
		DataDir:          filepath.Join(homeDir, ".bananachat", "data"),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".bananachat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AvailableAspectRatios returns the ratio tokens the UI offers.
func AvailableAspectRatios() []string {
	return []string{AspectDefault, "1:1", "16:9", "9:16", "4:3", "3:4"}
}

// AvailableGenerationCounts returns the batch sizes the UI offers.
func AvailableGenerationCounts() []int {
	return []int{1, 2, 4}
}
