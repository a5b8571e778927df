package index

import (
	"context"
	"strings"
)

// MockEmbedder maps a text to a vector by counting the listed terms.
type MockEmbedder struct {
	Terms []string
	Err   error
	Calls int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	vec := make([]float32, len(m.Terms))
	lower := strings.ToLower(text)
	for i, term := range m.Terms {
		vec[i] = float32(strings.Count(lower, term))
	}
	return vec, nil
}

type MockBatchEmbedder struct {
	MockEmbedder
	BatchSizes []int
}

func (m *MockBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.BatchSizes = append(m.BatchSizes, len(texts))
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := m.MockEmbedder.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

// RaggedEmbedder returns vectors of increasing length.
type RaggedEmbedder struct {
	n int
}

func (r *RaggedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	r.n++
	return make([]float32, r.n), nil
}
