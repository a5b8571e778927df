package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/chunker"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/index"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/synth"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/llm"
)

const (
	DefaultTopK         = 4
	DefaultHistoryLimit = 10
	DefaultEventLimit   = 100

	NotInitializedMessage = "I'm sorry, but the QA system is not initialized properly."
	errorMessagePrefix    = "I'm sorry, but I encountered an error: "
)

// RecordLister is the read side of the record store the engine indexes.
type RecordLister interface {
	ListRecords(ctx context.Context) ([]model.Record, error)
	ListEvents(ctx context.Context, limit int) ([]model.Event, error)
}

// Outcome tells how an Answer was produced.
type Outcome int

const (
	OutcomeAnswered Outcome = iota
	OutcomeNotInitialized
	OutcomeDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeNotInitialized:
		return "not_initialized"
	case OutcomeDegraded:
		return "degraded"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText renders the outcome by name in JSON responses.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Answer is the result of one question. Text is always set; Cause is set
// only for OutcomeDegraded.
type Answer struct {
	Question string
	Text     string
	Sources  []model.Source
	Outcome  Outcome
	Cause    error
}

// Status describes the live index.
type Status struct {
	Initialized bool      `json:"initialized"`
	Chunks      int       `json:"chunks"`
	BuiltAt     time.Time `json:"built_at"`
	Generation  uint64    `json:"generation"`
	HistorySize int       `json:"history_size"`
}

type snapshot struct {
	index      *index.Index
	roster     []string
	generation uint64
}

// Engine answers questions over an index rebuilt from the record store.
// The live index is swapped atomically; history is the only locked state.
type Engine struct {
	store     RecordLister
	synth     *synth.Synthesizer
	chunker   *chunker.Chunker
	builder   *index.Builder
	embedder  llm.EmbedderClient
	generator llm.LLMClient
	reranker  llm.RerankerClient

	system       string
	topK         int
	historyLimit int
	eventLimit   int
	batchSize    int

	live       atomic.Pointer[snapshot]
	generation atomic.Uint64

	mu      sync.Mutex
	history []model.Turn
}

// Option configures an Engine.
type Option func(*Engine)

func WithChunker(c *chunker.Chunker) Option {
	return func(e *Engine) { e.chunker = c }
}

func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(e *Engine) { e.synth = s }
}

func WithReranker(r llm.RerankerClient) Option {
	return func(e *Engine) { e.reranker = r }
}

func WithSystemPrompt(system string) Option {
	return func(e *Engine) { e.system = system }
}

func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// WithEventLimit caps how many recent events are indexed. Zero or less
// indexes all of them.
func WithEventLimit(n int) Option {
	return func(e *Engine) { e.eventLimit = n }
}

func WithEmbedBatchSize(n int) Option {
	return func(e *Engine) { e.batchSize = n }
}

// NewEngine creates an engine with no live index. Answers report
// OutcomeNotInitialized until the first successful Rebuild.
func NewEngine(store RecordLister, embedder llm.EmbedderClient, generator llm.LLMClient, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		embedder:     embedder,
		generator:    generator,
		topK:         DefaultTopK,
		historyLimit: DefaultHistoryLimit,
		eventLimit:   DefaultEventLimit,
		batchSize:    index.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.synth == nil {
		e.synth = synth.NewSynthesizer()
	}
	if e.chunker == nil {
		e.chunker = chunker.New()
	}
	e.builder = index.NewBuilder(embedder, index.WithBatchSize(e.batchSize))
	return e
}

// Rebuild reads the store, rebuilds the index and swaps it in. On failure
// the previous index stays live. A rebuild that completes after a newer one
// has already been swapped in is dropped.
func (e *Engine) Rebuild(ctx context.Context) error {
	gen := e.generation.Add(1)

	records, err := e.store.ListRecords(ctx)
	if err != nil {
		return storeError(err)
	}
	events, err := e.store.ListEvents(ctx, e.eventLimit)
	if err != nil {
		return storeError(err)
	}

	docs := e.synth.Documents(records, events)
	chunks := e.chunker.Split(docs)

	ix, err := e.builder.Build(ctx, chunks)
	if err != nil {
		return err
	}

	roster := make([]string, 0, len(records))
	for _, r := range records {
		roster = append(roster, r.Name)
	}

	next := &snapshot{index: ix, roster: roster, generation: gen}
	for {
		cur := e.live.Load()
		if cur != nil && cur.generation > gen {
			log.Printf("Discarding stale index rebuild %d, live is %d", gen, cur.generation)
			return nil
		}
		if e.live.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// Answer never fails; problems are reported through the Outcome.
func (e *Engine) Answer(ctx context.Context, question string) Answer {
	snap := e.live.Load()
	if snap == nil {
		return Answer{Question: question, Text: NotInitializedMessage, Outcome: OutcomeNotInitialized, Cause: model.ErrIndexUninitialized}
	}

	sources, err := e.retrieve(ctx, snap.index, question)
	if err != nil {
		return degraded(question, err)
	}

	text, err := e.generate(ctx, llm.Prompt{
		System:   e.system,
		Context:  sources,
		History:  e.History(),
		Question: question,
		Roster:   snap.roster,
		Grounded: true,
	})
	if err != nil {
		return degraded(question, err)
	}

	e.mu.Lock()
	e.history = append(e.history, model.Turn{Question: question, Answer: text})
	if over := len(e.history) - e.historyLimit; over > 0 {
		e.history = append([]model.Turn(nil), e.history[over:]...)
	}
	e.mu.Unlock()

	return Answer{Question: question, Text: text, Sources: sources, Outcome: OutcomeAnswered}
}

func (e *Engine) retrieve(ctx context.Context, ix *index.Index, question string) ([]model.Source, error) {
	if ix.Len() == 0 {
		return nil, nil
	}
	if e.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", model.ErrEmbeddingUnavailable)
	}

	vec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, wrapOnce(model.ErrEmbeddingUnavailable, err)
	}
	results, err := ix.Search(vec, e.topK)
	if err != nil {
		return nil, wrapOnce(model.ErrEmbeddingUnavailable, err)
	}

	sources := make([]model.Source, len(results))
	for i, r := range results {
		sources[i] = model.Source{Content: r.Chunk.Text, Metadata: r.Chunk.Metadata.Clone(), Score: r.Score}
	}
	return e.rerank(ctx, question, sources), nil
}

func (e *Engine) rerank(ctx context.Context, question string, sources []model.Source) []model.Source {
	if e.reranker == nil || len(sources) < 2 {
		return sources
	}

	docs := make([]string, len(sources))
	for i, s := range sources {
		docs[i] = s.Content
	}
	order, err := e.reranker.Rank(ctx, question, docs)
	if err != nil || len(order) != len(sources) {
		if err != nil {
			log.Printf("Rerank failed, keeping similarity order: %v", err)
		}
		return sources
	}

	out := make([]model.Source, 0, len(sources))
	seen := make([]bool, len(sources))
	for _, i := range order {
		if i < 0 || i >= len(sources) || seen[i] {
			return sources
		}
		seen[i] = true
		out = append(out, sources[i])
	}
	return out
}

func (e *Engine) generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	if e.generator == nil {
		return "", fmt.Errorf("%w: no generator configured", model.ErrGenerationUnavailable)
	}
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return "", wrapOnce(model.ErrGenerationUnavailable, err)
	}
	return text, nil
}

// ClearHistory drops all turns. The index is untouched.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	e.history = nil
	e.mu.Unlock()
}

// History returns a copy of the conversation, oldest first.
func (e *Engine) History() []model.Turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Turn(nil), e.history...)
}

// Status reports the live index without blocking rebuilds.
func (e *Engine) Status() Status {
	st := Status{HistorySize: len(e.History())}
	if snap := e.live.Load(); snap != nil {
		st.Initialized = true
		st.Chunks = snap.index.Len()
		st.BuiltAt = snap.index.BuiltAt()
		st.Generation = snap.generation
	}
	return st
}

func degraded(question string, err error) Answer {
	return Answer{Question: question, Text: errorMessagePrefix + err.Error(), Outcome: OutcomeDegraded, Cause: err}
}

func storeError(err error) error {
	return wrapOnce(model.ErrRecordStoreUnavailable, err)
}

func wrapOnce(category, err error) error {
	if errors.Is(err, category) {
		return err
	}
	return fmt.Errorf("%w: %w", category, err)
}
