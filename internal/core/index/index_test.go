package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

func chunks(texts ...string) []model.Chunk {
	out := make([]model.Chunk, len(texts))
	for i, t := range texts {
		meta := model.Metadata{}
		meta.Set("n", model.Number(float64(i)))
		out[i] = model.Chunk{DocumentID: "doc", Index: i, Text: t, Metadata: meta}
	}
	return out
}

func TestBuild_SearchRanksByCosine(t *testing.T) {
	emb := &MockEmbedder{Terms: []string{"alice", "bob", "carol"}}
	b := NewBuilder(emb)

	ix, err := b.Build(context.Background(), chunks("Person: Alice", "Person: Bob", "Person: Carol and Bob"))
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 3, ix.Dim())

	q, _ := emb.Embed(context.Background(), "bob")
	results, err := ix.Search(q, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Person: Bob", results[0].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "Person: Carol and Bob", results[1].Chunk.Text)
}

func TestBuild_EmptyChunksSkipsEmbedder(t *testing.T) {
	emb := &MockEmbedder{Terms: []string{"x"}, Err: errors.New("should not be called")}
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ix, err := NewBuilder(emb, WithClock(func() time.Time { return at })).Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
	assert.Equal(t, 0, emb.Calls)
	assert.Equal(t, at, ix.BuiltAt())

	results, err := ix.Search([]float32{1, 2, 3}, 4)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuild_UsesBatches(t *testing.T) {
	emb := &MockBatchEmbedder{MockEmbedder: MockEmbedder{Terms: []string{"a"}}}
	_, err := NewBuilder(emb, WithBatchSize(2)).Build(context.Background(), chunks("a", "aa", "aaa", "aaaa", "aaaaa"))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, emb.BatchSizes)
}

func TestBuild_EmbeddingFailure(t *testing.T) {
	cause := errors.New("connection refused")
	emb := &MockEmbedder{Terms: []string{"a"}, Err: cause}

	ix, err := NewBuilder(emb).Build(context.Background(), chunks("a"))
	assert.Nil(t, ix)
	assert.ErrorIs(t, err, model.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestBuild_DimensionMismatch(t *testing.T) {
	_, err := NewBuilder(&RaggedEmbedder{}).Build(context.Background(), chunks("a", "b"))
	assert.ErrorIs(t, err, model.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	emb := &MockEmbedder{Terms: []string{"a", "b"}}
	ix, err := NewBuilder(emb).Build(context.Background(), chunks("a"))
	require.NoError(t, err)

	_, err = ix.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearch_TiesKeepBuildOrder(t *testing.T) {
	emb := &MockEmbedder{Terms: []string{"same"}}
	ix, err := NewBuilder(emb).Build(context.Background(), chunks("same 1", "same 2", "same 3"))
	require.NoError(t, err)

	results, err := ix.Search([]float32{1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Chunk.Index)
	}
}
