package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider name constants.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewClient creates an LLM client for the named provider.
// Returns Client to enable dependency injection of mocks.
func NewClient(provider string, cfg *Config, logger *zap.Logger) (Client, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
