package llm

import (
	"fmt"
	"strings"
)

// NewParser creates a fallback parser for the configured provider.
func NewParser(cfg Config) (Parser, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIParser(cfg)
	case "", "mock":
		return &MockParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
