package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

const DefaultBatchSize = 32

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by embedders that accept several texts per call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Builder struct {
	embedder  Embedder
	batchSize int
	now       func() time.Time
}

type BuilderOption func(*Builder)

func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(embedder Embedder, opts ...BuilderOption) *Builder {
	b := &Builder{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build embeds every chunk and returns a new Index. Any embedding failure
// aborts the build and is reported as model.ErrEmbeddingUnavailable.
func (b *Builder) Build(ctx context.Context, chunks []model.Chunk) (*Index, error) {
	ix := &Index{entries: make([]entry, 0, len(chunks))}
	if len(chunks) == 0 {
		ix.builtAt = b.now()
		return ix, nil
	}
	if b.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", model.ErrEmbeddingUnavailable)
	}

	for from := 0; from < len(chunks); from += b.batchSize {
		to := from + b.batchSize
		if to > len(chunks) {
			to = len(chunks)
		}
		batch := chunks[from:to]

		vectors, err := b.embed(ctx, batch)
		if err != nil {
			return nil, embeddingError(err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks", model.ErrEmbeddingUnavailable, len(vectors), len(batch))
		}

		for i, vec := range vectors {
			if len(vec) == 0 {
				return nil, fmt.Errorf("%w: empty vector for chunk %d of %s", model.ErrEmbeddingUnavailable, batch[i].Index, batch[i].DocumentID)
			}
			if ix.dim == 0 {
				ix.dim = len(vec)
			}
			if len(vec) != ix.dim {
				return nil, fmt.Errorf("%w: %w: got %d, want %d", model.ErrEmbeddingUnavailable, ErrDimensionMismatch, len(vec), ix.dim)
			}
			ix.entries = append(ix.entries, entry{chunk: batch[i], vector: vec, norm: norm(vec)})
		}
	}

	ix.builtAt = b.now()
	return ix, nil
}

func (b *Builder) embed(ctx context.Context, batch []model.Chunk) ([][]float32, error) {
	if be, ok := b.embedder.(BatchEmbedder); ok {
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		return be.EmbedBatch(ctx, texts)
	}

	vectors := make([][]float32, 0, len(batch))
	for _, c := range batch {
		vec, err := b.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func embeddingError(err error) error {
	if errors.Is(err, model.ErrEmbeddingUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrEmbeddingUnavailable, err)
}
