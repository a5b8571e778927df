package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

type LLMClient interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedderClient embeds several texts in one provider call.
type BatchEmbedderClient interface {
	EmbedderClient
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type RerankerClient interface {
	Rank(ctx context.Context, query string, documents []string) ([]int, error)
}

const DefaultSystemPrompt = `You are the assistant of a face recognition platform.
Answer questions about registered people and registration activity using only the provided context.
If the context does not contain the answer, say that you do not know.`

// Prompt is a provider-neutral generation request. History is oldest first
// and is mapped onto each provider's native conversation turns.
type Prompt struct {
	System   string
	Context  []model.Source
	History  []model.Turn
	Question string
	// Roster names every person in the index the context came from, in
	// store order. nil when unknown.
	Roster []string
	// Grounded renders the context block even when it is empty.
	Grounded bool
}

// UserMessage renders the final user turn: retrieved context followed by the question.
func (p Prompt) UserMessage() string {
	if !p.Grounded && len(p.Context) == 0 {
		return p.Question
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	if len(p.Context) == 0 {
		b.WriteString("(no matching records)\n")
	}
	for i, src := range p.Context {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(src.Content))
	}
	fmt.Fprintf(&b, "\nQuestion: %s", p.Question)
	return b.String()
}

func (p Prompt) SystemPrompt() string {
	if p.System == "" {
		return DefaultSystemPrompt
	}
	return p.System
}
