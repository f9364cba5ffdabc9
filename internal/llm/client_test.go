package llm

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"swagger-surface/internal/spec"
)

func bodyEndpoint() *spec.Endpoint {
	return &spec.Endpoint{
		Method:   "POST",
		Path:     "/users",
		Identity: "POST /users",
		Summary:  "Create a user",
		RequestBody: &spec.SchemaNode{
			Type:   "object",
			Fields: map[string]*spec.SchemaNode{"name": {Type: "string"}},
		},
	}
}

func fakeClient(call callFunc) *BaseClient {
	c := NewBaseClient(NewDefaultConfig(), nil)
	c.call = call
	return c
}

func TestSuggestExample(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     interface{}
	}{
		{
			name:     "plain json",
			response: `{"name": "Ada Lovelace"}`,
			want:     map[string]interface{}{"name": "Ada Lovelace"},
		},
		{
			name:     "fenced json",
			response: "```json\n{\"name\": \"Ada Lovelace\"}\n```",
			want:     map[string]interface{}{"name": "Ada Lovelace"},
		},
		{
			name:     "bare fence",
			response: "```\n{\"name\": \"Ada\"}\n```",
			want:     map[string]interface{}{"name": "Ada"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeClient(func(ctx context.Context, prompt string) (string, error) {
				return tt.response, nil
			})

			got, err := c.SuggestExample(context.Background(), bodyEndpoint())
			if err != nil {
				t.Fatalf("SuggestExample() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SuggestExample() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSuggestExamplePromptShape(t *testing.T) {
	var prompt string
	c := fakeClient(func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "{}", nil
	})

	if _, err := c.SuggestExample(context.Background(), bodyEndpoint()); err != nil {
		t.Fatalf("SuggestExample() error = %v", err)
	}

	for _, fragment := range []string{"POST /users", "Create a user", `"name": ""`} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestSuggestExampleErrors(t *testing.T) {
	tests := []struct {
		name     string
		client   *BaseClient
		endpoint *spec.Endpoint
	}{
		{
			name:     "no provider attached",
			client:   NewBaseClient(NewDefaultConfig(), nil),
			endpoint: bodyEndpoint(),
		},
		{
			name: "no request body",
			client: fakeClient(func(ctx context.Context, prompt string) (string, error) {
				return "{}", nil
			}),
			endpoint: &spec.Endpoint{Method: "GET", Path: "/users", Identity: "GET /users"},
		},
		{
			name: "provider failure",
			client: fakeClient(func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("rate limited")
			}),
			endpoint: bodyEndpoint(),
		},
		{
			name: "non-json response",
			client: fakeClient(func(ctx context.Context, prompt string) (string, error) {
				return "sure, here is an example:", nil
			}),
			endpoint: bodyEndpoint(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.client.SuggestExample(context.Background(), tt.endpoint); err == nil {
				t.Error("SuggestExample() should fail")
			}
		})
	}
}

func TestNewClientFactory(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.APIKey = "test-key"

	if _, err := NewClient(cfg, nil); err != nil {
		t.Errorf("NewClient(openai) error = %v", err)
	}

	cfg.Provider = "unsupported"
	if _, err := NewClient(cfg, nil); err == nil {
		t.Error("NewClient(unsupported) should fail")
	}
}
