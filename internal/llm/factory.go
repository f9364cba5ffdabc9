package llm

import (
	"fmt"

	"swagger-surface/internal/logger"
)

// NewClient creates a new LLM client based on the configured provider.
func NewClient(config *Config, log *logger.Logger) (Client, error) {
	switch config.Provider {
	case "openai":
		return NewOpenAIClient(config, log), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}
}
