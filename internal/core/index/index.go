package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

type entry struct {
	chunk  model.Chunk
	vector []float32
	norm   float64
}

// Index is an immutable set of embedded chunks searchable by cosine
// similarity. A new Index is built for every rebuild; none is ever mutated.
type Index struct {
	entries []entry
	dim     int
	builtAt time.Time
}

type Result struct {
	Chunk model.Chunk
	Score float64
}

func (ix *Index) Len() int           { return len(ix.entries) }
func (ix *Index) Dim() int           { return ix.dim }
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// Chunks returns the indexed chunks in build order.
func (ix *Index) Chunks() []model.Chunk {
	out := make([]model.Chunk, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = e.chunk
	}
	return out
}

// Search returns the k chunks most similar to query, best first. Ties keep
// build order. An empty index returns no results for any query.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if len(ix.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(query), ix.dim)
	}

	qn := norm(query)
	results := make([]Result, len(ix.entries))
	for i, e := range ix.entries {
		results[i] = Result{Chunk: e.chunk, Score: cosine(query, qn, e.vector, e.norm)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
