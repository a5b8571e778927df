package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

const DefaultStubDimensions = 256

// StubEmbedder is a deterministic offline embedder: a hashed bag of words,
// L2-normalized.
type StubEmbedder struct {
	Dimensions int
}

func NewStubEmbedder(dim int) *StubEmbedder {
	if dim <= 0 {
		dim = DefaultStubDimensions
	}
	return &StubEmbedder{Dimensions: dim}
}

func (e *StubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify("stub", err, false)
	}

	vec := make([]float32, e.Dimensions)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.Dimensions)]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		n := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

func (e *StubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// StubGenerator answers from the registered names without calling any
// remote model. It prefers the prompt's roster and falls back to the names
// found in the retrieved context.
type StubGenerator struct{}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

func (g *StubGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify("stub", err, false)
	}

	names := prompt.Roster
	if names == nil {
		names = contextNames(prompt.Context)
	}
	q := strings.ToLower(prompt.Question)

	switch {
	case strings.Contains(q, "how many"):
		if len(names) == 1 {
			return "There is 1 person registered in the system.", nil
		}
		return fmt.Sprintf("There are %d people registered in the system.", len(names)), nil
	case strings.Contains(q, "who") && len(names) > 0:
		return fmt.Sprintf("I know about the following people: %s.", strings.Join(names, ", ")), nil
	case len(names) > 0:
		return fmt.Sprintf("I have information about %s and others. What would you like to know specifically?", names[0]), nil
	default:
		return "I don't have any information about registered users yet. Please register some faces first.", nil
	}
}

// contextNames lists the distinct names of record sources in retrieval order.
func contextNames(sources []model.Source) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, src := range sources {
		if src.Metadata.GetString("kind") == string(model.KindRecord) {
			add(src.Metadata.GetString("name"))
		}
	}
	return names
}
