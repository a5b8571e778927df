package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/config"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

func source(kind, name string) model.Source {
	meta := model.Metadata{}
	meta.Set("kind", model.String(kind))
	if kind == string(model.KindRecord) {
		meta.Set("name", model.String(name))
	} else {
		meta.Set("person_name", model.String(name))
	}
	return model.Source{Content: "Person: " + name, Metadata: meta}
}

func TestPrompt_UserMessage(t *testing.T) {
	p := Prompt{Question: "who?", Grounded: true}
	assert.Equal(t, "Context:\n(no matching records)\n\nQuestion: who?", p.UserMessage())

	p.Context = []model.Source{source("record", "Alice"), source("record", "Bob")}
	msg := p.UserMessage()
	assert.Contains(t, msg, "[1] Person: Alice\n[2] Person: Bob\n")
	assert.True(t, strings.HasSuffix(msg, "Question: who?"))

	raw := Prompt{Question: "rank these"}
	assert.Equal(t, "rank these", raw.UserMessage())
	assert.Equal(t, DefaultSystemPrompt, raw.SystemPrompt())
}

func TestStubEmbedder_Deterministic(t *testing.T) {
	e := NewStubEmbedder(64)
	a, err := e.Embed(context.Background(), "Person: Alice")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "person alice")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	var sum float64
	for _, v := range a {
		sum += float64(v * v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)

	empty, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, empty, 64)

	batch, err := e.EmbedBatch(context.Background(), []string{"Person: Alice", "x"})
	require.NoError(t, err)
	assert.Equal(t, a, batch[0])
}

func TestStubGenerator(t *testing.T) {
	g := NewStubGenerator()
	ctx := context.Background()

	ans, err := g.Generate(ctx, Prompt{Question: "How many people?"})
	require.NoError(t, err)
	assert.Equal(t, "There are 0 people registered in the system.", ans)

	sources := []model.Source{source("record", "Alice"), source("event", "Zed"), source("record", "Bob"), source("record", "Alice")}
	ans, err = g.Generate(ctx, Prompt{Question: "Who do you know?", Context: sources})
	require.NoError(t, err)
	assert.Equal(t, "I know about the following people: Alice, Bob.", ans)

	ans, err = g.Generate(ctx, Prompt{Question: "how many are registered?", Context: sources[:1]})
	require.NoError(t, err)
	assert.Equal(t, "There is 1 person registered in the system.", ans)

	ans, err = g.Generate(ctx, Prompt{Question: "tell me more", Context: sources})
	require.NoError(t, err)
	assert.Contains(t, ans, "Alice")

	ans, err = g.Generate(ctx, Prompt{Question: "tell me more"})
	require.NoError(t, err)
	assert.Contains(t, ans, "register some faces first")
}

func TestStubGenerator_RosterOverridesContext(t *testing.T) {
	g := NewStubGenerator()
	ctx := context.Background()
	sources := []model.Source{source("record", "Alice")}

	ans, err := g.Generate(ctx, Prompt{Question: "How many people?", Context: sources, Roster: []string{"Alice", "Bob", "Carol"}})
	require.NoError(t, err)
	assert.Equal(t, "There are 3 people registered in the system.", ans)

	ans, err = g.Generate(ctx, Prompt{Question: "who is here?", Context: sources, Roster: []string{"Alice", "Bob", "Carol"}})
	require.NoError(t, err)
	assert.Equal(t, "I know about the following people: Alice, Bob, Carol.", ans)

	// an empty roster means nobody is registered, whatever the context says
	ans, err = g.Generate(ctx, Prompt{Question: "How many people?", Context: sources, Roster: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "There are 0 people registered in the system.", ans)
}

func TestGuard_Timeout(t *testing.T) {
	slow := &MockLLM{Response: "late", Block: make(chan struct{})}
	g := NewGuard(0, 0, 20*time.Millisecond).Generator(slow)

	_, err := g.Generate(context.Background(), Prompt{Question: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuard_RateLimitExceedsDeadline(t *testing.T) {
	guard := NewGuard(0.001, 1, 50*time.Millisecond)
	emb := guard.Embedder(&MockEmbedder{Vector: []float32{1}})

	_, err := emb.Embed(context.Background(), "first")
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), "second")
	assert.ErrorIs(t, err, model.ErrRateLimited)
}

func TestGuard_KeepsBatchSupport(t *testing.T) {
	guard := NewGuard(0, 0, 0)

	_, ok := guard.Embedder(NewStubEmbedder(8)).(BatchEmbedderClient)
	assert.True(t, ok)

	_, ok = guard.Embedder(&MockEmbedder{}).(BatchEmbedderClient)
	assert.False(t, ok)

	assert.Nil(t, guard.Embedder(nil))
	assert.Nil(t, guard.Generator(nil))
}

func TestGuard_PassesThroughErrors(t *testing.T) {
	cause := errors.New("boom")
	g := NewGuard(0, 0, time.Second).Generator(&MockLLM{Err: cause})
	_, err := g.Generate(context.Background(), Prompt{})
	assert.ErrorIs(t, err, cause)
}

func TestClassify(t *testing.T) {
	cause := errors.New("503 service unavailable")

	err := classify("openai", cause, false)
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, model.ErrRateLimited)

	err = classify("openai", cause, true)
	assert.ErrorIs(t, err, model.ErrRateLimited)

	assert.Equal(t, err, classify("x", err, false))
	assert.NoError(t, classify("x", nil, true))
}

func TestReranker(t *testing.T) {
	m := &MockLLM{Response: "2, 0, 2, 7"}
	r := NewSimpleLLMReranker(m)

	order, err := r.Rank(context.Background(), "alice", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)
	require.Len(t, m.Prompts, 1)
	assert.Equal(t, rerankInstructions, m.Prompts[0].System)
	assert.Contains(t, m.Prompts[0].Question, "[1] b")

	failing := NewSimpleLLMReranker(&MockLLM{Err: errors.New("down")})
	order, err = failing.Rank(context.Background(), "q", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, order)

	order, err = r.Rank(context.Background(), "q", nil)
	assert.NoError(t, err)
	assert.Empty(t, order)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	gen, emb, err := NewClient(ctx, config.LLMConfig{Provider: "stub"})
	require.NoError(t, err)
	assert.IsType(t, &StubGenerator{}, gen)
	assert.IsType(t, &StubEmbedder{}, emb)

	gen, emb, err = NewClient(ctx, config.LLMConfig{Provider: "claude", Model: "claude-3-5-haiku-latest", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, gen)
	assert.IsType(t, &StubEmbedder{}, emb)

	gen, emb, err = NewClient(ctx, config.LLMConfig{Provider: "claude", APIKey: "k", EmbeddingProvider: "openai"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, gen)
	assert.IsType(t, &OpenAIClient{}, emb)

	_, emb, err = NewClient(ctx, config.LLMConfig{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, emb)

	_, _, err = NewClient(ctx, config.LLMConfig{Provider: "mystery"})
	assert.Error(t, err)
}
