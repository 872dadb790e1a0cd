package llm

import "context"

// Provider defines the interface for completion-service providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete submits a system + user prompt pair and returns the raw reply
	// text. Replies are expected but not guaranteed to be valid JSON; parsing
	// is the caller's concern (see ParseJSON).
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains one completion-service call
type CompletionRequest struct {
	// SystemPrompt frames the task (role, output format)
	SystemPrompt string

	// UserPrompt carries the document text and question
	UserPrompt string

	// Model is the specific model to use (provider-specific, optional)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured sampling temperature when > 0
	Temperature float64
}

// CompletionResponse contains the completion-service reply
type CompletionResponse struct {
	// Text is the raw reply
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds completion-service provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling (verification wants focused output)
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Model:       "",
		Timeout:     60,
		MaxTokens:   2000,
		Temperature: 0.2,
	}
}
