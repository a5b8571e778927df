package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/config"
)

// NewClient builds the generation and embedding clients for the configured
// provider. Both are always non-nil on success.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	var gen LLMClient
	var emb EmbedderClient

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		gen, emb = c, c

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		gen, emb = c, c

	case "claude":
		// no embeddings API, see embedding_provider
		gen = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)

	case "ollama":
		c := newOllamaClient(cfg)
		gen, emb = c, c

	case "stub", "":
		gen, emb = NewStubGenerator(), NewStubEmbedder(0)

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}

	if ep := strings.ToLower(cfg.EmbeddingProvider); ep != "" && ep != provider {
		sub := cfg
		sub.Provider, sub.EmbeddingProvider = ep, ""
		_, e, err := NewClient(ctx, sub)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding provider: %w", err)
		}
		emb = e
	}

	if emb == nil {
		log.Printf("Warning: provider %s has no embeddings API, falling back to the offline stub embedder", provider)
		emb = NewStubEmbedder(0)
	}

	return gen, emb, nil
}

// Ollama is reached through its OpenAI-compatible API.
func newOllamaClient(cfg config.LLMConfig) *OpenAIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
	}

	log.Printf("Initializing Ollama via OpenAI-compatible API at %s", baseURL)

	// ignored by Ollama but required by the client config
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}

	return NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
}
