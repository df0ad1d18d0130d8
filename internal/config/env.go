package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level settings resolved from the environment exactly once
// at startup. The API key never travels implicitly: whatever is resolved here
// is passed down as an explicit parameter.
type Env struct {
	APIKey  string `env:"GEMINI_API_KEY"`
	BaseURL string `env:"GEMINI_BASE_URL"`
}

// LoadEnv parses the ambient environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}
