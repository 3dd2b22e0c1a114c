package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds explicit provider configuration. Components never
// read API keys from the environment themselves; main wires this in.
type OpenAIConfig struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Temperature    float32
}

// OpenAIClient talks to an OpenAI-compatible API (OpenAI, Ollama, vLLM...)
type OpenAIClient struct {
	client         *openai.Client
	embeddingModel string
	chatModel      string
	temperature    float32
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:         openai.NewClientWithConfig(clientCfg),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		temperature:    cfg.Temperature,
	}
}

// Embed computes embeddings for a batch of texts in one request
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// Complete generates an answer for the given prompts
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
