package ai

import "context"

// SummarizeRequest is one generation call. Sampling is always disabled.
type SummarizeRequest struct {
	Text      string
	MaxLength int // generation tokens
	MinLength int // generation tokens
}

// Summarizer is the text-to-text capability the analysis pipeline depends on
type Summarizer interface {
	Summarize(ctx context.Context, req SummarizeRequest) (string, error)
}

// Backend is a model runtime: it resolves a model by name, then generates with it
type Backend interface {
	Name() string
	Load(ctx context.Context, model string) (*ModelInfo, error)
	Generate(ctx context.Context, model string, req SummarizeRequest) (string, error)
}

// ModelInfo describes a model that loaded successfully
type ModelInfo struct {
	Backend string `yaml:"backend" json:"backend"`
	Name    string `yaml:"name" json:"name"`
	Task    string `yaml:"task,omitempty" json:"task,omitempty"`
	OwnedBy string `yaml:"owned_by,omitempty" json:"owned_by,omitempty"`
}
