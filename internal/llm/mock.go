package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// MockClient is a deterministic in-process provider for tests and local
// development. Embeddings are derived from a hash of the input so equal
// texts always produce equal vectors.
type MockClient struct {
	Dim       int
	CompleteF func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	EmbedErr  error
}

// NewMockClient creates a mock provider with the given embedding dimension
func NewMockClient(dim int) *MockClient {
	if dim <= 0 {
		dim = 64
	}
	return &MockClient{Dim: dim}
}

func (m *MockClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	_ = ctx
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = deterministicVector(t, m.Dim)
	}
	return out, nil
}

func (m *MockClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.CompleteF != nil {
		return m.CompleteF(ctx, systemPrompt, userPrompt)
	}
	return "Mock answer.", nil
}

func deterministicVector(input string, dim int) []float32 {
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
	return v
}
