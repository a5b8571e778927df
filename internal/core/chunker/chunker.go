package chunker

import (
	"strings"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
	DefaultSeparator = "\n"
)

// Chunker splits documents into bounded, overlapping windows of runes.
type Chunker struct {
	size      int
	overlap   int
	separator []rune
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the maximum number of characters shared by two
// consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithSeparator sets the preferred split point. Empty disables it.
func WithSeparator(sep string) Option {
	return func(c *Chunker) {
		c.separator = []rune(sep)
	}
}

// New creates a chunker. An overlap not below the size is clamped to a
// quarter of the size.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:      DefaultChunkSize,
		overlap:   DefaultOverlap,
		separator: []rune(DefaultSeparator),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}
	return c
}

// Size and Overlap report the effective settings after clamping.
func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks every document in order.
func (c *Chunker) Split(docs []model.Document) []model.Chunk {
	var chunks []model.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.SplitDocument(doc)...)
	}
	return chunks
}

// SplitDocument cuts a document into windows of at most size runes. A window
// ends right after the last separator found past the overlap region, falling
// back to a hard cut. The next window starts overlap runes before the cut,
// moved forward to just after a separator when the overlap region has one.
func (c *Chunker) SplitDocument(doc model.Document) []model.Chunk {
	text := []rune(doc.Text)
	n := len(text)
	if n == 0 {
		return nil
	}

	var chunks []model.Chunk
	start := 0
	for {
		end := start + c.size
		if end >= n {
			chunks = append(chunks, c.chunk(doc, len(chunks), text, start, n))
			return chunks
		}

		split := end
		for p := end; p > start+c.overlap; p-- {
			if c.separatorBefore(text, p) {
				split = p
				break
			}
		}
		chunks = append(chunks, c.chunk(doc, len(chunks), text, start, split))

		next := split - c.overlap
		for p := next; p < split; p++ {
			if c.separatorBefore(text, p) {
				next = p
				break
			}
		}
		start = next
	}
}

func (c *Chunker) chunk(doc model.Document, idx int, text []rune, start, end int) model.Chunk {
	return model.Chunk{
		DocumentID: doc.ID,
		Index:      idx,
		Start:      start,
		End:        end,
		Text:       string(text[start:end]),
		Metadata:   doc.Metadata.Clone(),
	}
}

// separatorBefore reports whether text[:p] ends with the separator.
func (c *Chunker) separatorBefore(text []rune, p int) bool {
	k := len(c.separator)
	if k == 0 || p < k || p > len(text) {
		return false
	}
	for i := 0; i < k; i++ {
		if text[p-k+i] != c.separator[i] {
			return false
		}
	}
	return true
}

// Reassemble joins the chunks of one document back into its text by
// dropping the prefix each chunk shares with its predecessor.
func Reassemble(chunks []model.Chunk) string {
	var b strings.Builder
	for i, ch := range chunks {
		if i == 0 {
			b.WriteString(ch.Text)
			continue
		}
		runes := []rune(ch.Text)
		skip := chunks[i-1].End - ch.Start
		if skip < 0 {
			skip = 0
		}
		if skip > len(runes) {
			skip = len(runes)
		}
		b.WriteString(string(runes[skip:]))
	}
	return b.String()
}
