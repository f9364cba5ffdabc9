package llm

import "os"

// Config represents the configuration for LLM-assisted example payloads.
type Config struct {
	// Provider specifies which LLM provider to use (e.g., "openai")
	Provider string `json:"provider" yaml:"provider"`

	// APIKey is the API key for the LLM provider
	APIKey string `json:"api_key" yaml:"api_key"`

	// Model specifies which model to use (e.g., "gpt-4")
	Model string `json:"model" yaml:"model"`

	// Temperature controls the randomness of the output (0.0 to 1.0)
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens limits the length of the generated response
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// NewDefaultConfig returns a default configuration, picking the API key
// up from the environment.
func NewDefaultConfig() *Config {
	return &Config{
		Provider:    "openai",
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:       "gpt-4",
		Temperature: 0.2,
		MaxTokens:   1000,
	}
}
