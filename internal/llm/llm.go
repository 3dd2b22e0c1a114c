package llm

import "context"

// Embedder computes semantic embeddings for a batch of texts.
// A provider failure is returned as an error; callers that can degrade
// (the ranker) treat failed embeddings as absent rather than fatal.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates an answer from a system prompt and a user prompt.
// No output schema is enforced; downstream decoding is defensive.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client bundles both capabilities of one provider
type Client interface {
	Embedder
	Completer
}
