package chunker

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

func doc(text string) model.Document {
	meta := model.Metadata{}
	meta.Set("kind", model.String("record"))
	meta.Set("name", model.String("Alice"))
	return model.Document{ID: "record:1", Kind: model.KindRecord, Text: text, Metadata: meta}
}

func randomText(rng *rand.Rand, n int) string {
	alphabet := []rune("abcdefghij klmnoé漢字\n")
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(alphabet[rng.Intn(len(alphabet))])
	}
	return b.String()
}

func TestChunker_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	configs := []*Chunker{
		New(),
		New(WithChunkSize(50), WithOverlap(10)),
		New(WithChunkSize(17), WithOverlap(16)),
		New(WithChunkSize(30), WithOverlap(0)),
		New(WithChunkSize(40), WithOverlap(8), WithSeparator(". ")),
		New(WithChunkSize(25), WithOverlap(5), WithSeparator("")),
	}

	for _, c := range configs {
		for _, n := range []int{1, 5, 49, 50, 51, 333, 2500} {
			text := randomText(rng, n)
			chunks := c.SplitDocument(doc(text))
			require.NotEmpty(t, chunks)
			assert.Equal(t, text, Reassemble(chunks), "size=%d overlap=%d n=%d", c.Size(), c.Overlap(), n)

			for i, ch := range chunks {
				assert.LessOrEqual(t, utf8.RuneCountInString(ch.Text), c.Size())
				assert.Equal(t, i, ch.Index)
				if i > 0 {
					prev := chunks[i-1]
					assert.Greater(t, ch.Start, prev.Start)
					assert.LessOrEqual(t, ch.Start, prev.End, "chunks must not leave gaps")
					assert.LessOrEqual(t, prev.End-ch.Start, c.Overlap())
				}
			}
		}
	}
}

func TestChunker_PrefersSeparator(t *testing.T) {
	line := strings.Repeat("x", 9) + "\n"
	text := strings.Repeat(line, 30)

	c := New(WithChunkSize(45), WithOverlap(10))
	chunks := c.SplitDocument(doc(text))
	require.Greater(t, len(chunks), 1)

	for _, ch := range chunks {
		assert.True(t, strings.HasSuffix(ch.Text, "\n"), "chunk %q should end on a line break", ch.Text)
	}
	for _, ch := range chunks[1:] {
		assert.False(t, strings.HasPrefix(ch.Text, "x\n"), "chunk should start at a line boundary")
	}
	assert.Equal(t, text, Reassemble(chunks))
}

func TestChunker_MetadataCopied(t *testing.T) {
	d := doc(strings.Repeat("line of text\n", 200))
	chunks := New().Split([]model.Document{d})
	require.Greater(t, len(chunks), 1)

	for _, ch := range chunks {
		assert.True(t, d.Metadata.Equal(ch.Metadata))
		assert.Equal(t, d.ID, ch.DocumentID)
	}

	chunks[0].Metadata.Set("name", model.String("Mallory"))
	assert.Equal(t, "Alice", d.Metadata.GetString("name"))
	assert.Equal(t, "Alice", chunks[1].Metadata.GetString("name"))
}

func TestChunker_EmptyDocument(t *testing.T) {
	assert.Empty(t, New().SplitDocument(doc("")))
	assert.Equal(t, "", Reassemble(nil))
}

func TestChunker_OverlapClamped(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(100))
	assert.Equal(t, 25, c.Overlap())

	c = New(WithChunkSize(-1), WithOverlap(-5))
	assert.Equal(t, DefaultChunkSize, c.Size())
	assert.Equal(t, DefaultOverlap, c.Overlap())
}
