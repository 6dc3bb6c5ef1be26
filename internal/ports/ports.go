package ports

import (
	"context"

	"acolhimento/internal/domain"
)

// Extractor turns free text into a candidate contact record.
type Extractor interface {
	Extract(ctx context.Context, text string) (domain.CandidateRecord, error)
}

// Generator issues a single text-generation call against the local LLM
// runtime and returns the model's raw textual output. Retry on transient
// failure is the implementation's job.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// ModelInfo describes one model known to the LLM runtime.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

// ModelCatalog lists models and reports model availability.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
	// CheckModel never fails; any error is reported as unavailable.
	// An empty name means the configured default model.
	CheckModel(ctx context.Context, name string) bool
	CurrentModel() string
}
