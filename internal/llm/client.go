// Package llm asks a language model for realistic example payloads for
// an endpoint. It is an optional enrichment: callers fall back to the
// deterministic samples when a suggestion fails.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"swagger-surface/internal/logger"
	"swagger-surface/internal/spec"
	"swagger-surface/internal/testdata"
)

// Client suggests example request payloads for endpoints.
type Client interface {
	SuggestExample(ctx context.Context, endpoint *spec.Endpoint) (interface{}, error)
}

// callFunc performs one prompt round-trip against a provider.
type callFunc func(ctx context.Context, prompt string) (string, error)

// BaseClient implements the prompt assembly and response handling shared
// by all providers.
type BaseClient struct {
	config *Config
	log    *logger.Logger
	call   callFunc
}

// NewBaseClient creates a provider-less base client; calls fail until a
// provider attaches its call function.
func NewBaseClient(config *Config, log *logger.Logger) *BaseClient {
	if log == nil {
		log = logger.NewDefault()
	}
	return &BaseClient{
		config: config,
		log:    log.WithComponent("llm"),
	}
}

// SuggestExample asks the provider for a realistic request body for the
// endpoint. The deterministic sample is included in the prompt as the
// shape the answer must keep.
func (c *BaseClient) SuggestExample(ctx context.Context, endpoint *spec.Endpoint) (interface{}, error) {
	if c.call == nil {
		return nil, fmt.Errorf("no LLM provider attached")
	}
	if endpoint.RequestBody == nil {
		return nil, fmt.Errorf("%s has no request body", endpoint.Identity)
	}

	prompt, err := c.buildPrompt(endpoint)
	if err != nil {
		return nil, err
	}

	response, err := c.call(ctx, prompt)
	if err != nil {
		c.log.WithError(err).Warnf("suggestion failed for %s", endpoint.Identity)
		return nil, err
	}

	var example interface{}
	if err := json.Unmarshal([]byte(extractJSON(response)), &example); err != nil {
		return nil, fmt.Errorf("invalid response format: %w", err)
	}
	return example, nil
}

func (c *BaseClient) buildPrompt(endpoint *spec.Endpoint) (string, error) {
	shape, err := json.MarshalIndent(testdata.Sample(endpoint.RequestBody), "", "  ")
	if err != nil {
		return "", err
	}
	summary := endpoint.Summary
	if summary == "" {
		summary = "no summary provided"
	}
	return fmt.Sprintf(
		"Produce one realistic example request body for the API operation %s (%s).\n"+
			"Keep exactly this JSON shape, replacing the placeholder values:\n%s\n"+
			"Respond with the JSON document only.",
		endpoint.Identity, summary, shape), nil
}

// extractJSON trims markdown fences some models wrap around JSON answers.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimPrefix(response, "```")
		if i := strings.LastIndex(response, "```"); i >= 0 {
			response = response[:i]
		}
	}
	return strings.TrimSpace(response)
}
