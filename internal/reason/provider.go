// Package reason implements the hypothesis generation stage. The generation
// call itself is an external collaborator behind the Provider interface;
// the parsing and repair of its output is core logic and lives here.
package reason

import (
	"context"
	"fmt"
	"strings"

	"github.com/sameerk147/repurpose/internal/model"
)

// Provider is the text-generation capability the generator depends on.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Complete sends a prompt and returns the raw model output. The output
	// may be wrapped in markdown fences or otherwise malformed; callers
	// repair it with ParseCandidates.
	Complete(ctx context.Context, prompt string) (string, error)

	// IsAvailable reports whether the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// NewProvider creates a provider from configuration. An empty provider name
// is an error: the reasoning stage cannot run without a generation backend.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q (supported: openai, ollama)", cfg.Provider)
	}
}
