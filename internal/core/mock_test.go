package core

import (
	"context"
	"sync"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/llm"
)

type MockStore struct {
	mu      sync.Mutex
	Records []model.Record
	Events  []model.Event
	Err     error
	// Block stalls the next ListRecords call until closed. Entered is
	// signalled when that call starts waiting.
	Block   chan struct{}
	Entered chan struct{}
}

func (m *MockStore) ListRecords(ctx context.Context) ([]model.Record, error) {
	m.mu.Lock()
	block, entered := m.Block, m.Entered
	m.Block, m.Entered = nil, nil
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]model.Record(nil), m.Records...), nil
}

func (m *MockStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	events := append([]model.Event(nil), m.Events...)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *MockStore) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

func (m *MockStore) SetRecords(records ...model.Record) {
	m.mu.Lock()
	m.Records = records
	m.mu.Unlock()
}

type MockEmbedder struct {
	mu    sync.Mutex
	Err   error
	Calls int
	stub  *llm.StubEmbedder
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{stub: llm.NewStubEmbedder(64)}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.Calls++
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.stub.Embed(ctx, text)
}

func (m *MockEmbedder) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

type MockLLM struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []llm.Prompt
}

func (m *MockLLM) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "answer to " + prompt.Question, nil
}

func (m *MockLLM) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockLLM) Last() llm.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Prompts[len(m.Prompts)-1]
}

type MockReranker struct {
	Order []int
	Err   error
}

func (m *MockReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	return m.Order, m.Err
}

// BlockingEmbedder stalls on one exact text until Release is closed and
// embeds everything else immediately.
type BlockingEmbedder struct {
	*MockEmbedder
	Text    string
	Entered chan struct{}
	Release chan struct{}
}

func (b *BlockingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == b.Text {
		b.Entered <- struct{}{}
		<-b.Release
	}
	return b.MockEmbedder.Embed(ctx, text)
}
