package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const rerankInstructions = `You are a search relevance optimization system.
Rank documents by their relevance to the query.
Output ONLY the indices of the documents in order of relevance, separated by commas.
Example: 0, 2, 1
Do not output any other text.`

var indexPattern = regexp.MustCompile(`\d+`)

// SimpleLLMReranker asks the generation model to order retrieved chunks.
type SimpleLLMReranker struct {
	LLM LLMClient
}

func NewSimpleLLMReranker(client LLMClient) *SimpleLLMReranker {
	return &SimpleLLMReranker{LLM: client}
}

// Rank returns a permutation of the document indices. When the model fails
// or answers nonsense the original order is kept.
func (r *SimpleLLMReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) == 1 {
		return []int{0}, nil
	}

	var docList strings.Builder
	for i, d := range docs {
		content := []rune(strings.TrimSpace(d))
		if len(content) > 200 {
			content = append(content[:200], []rune("...")...)
		}
		fmt.Fprintf(&docList, "[%d] %s\n", i, string(content))
	}

	resp, err := r.LLM.Generate(ctx, Prompt{
		System:   rerankInstructions,
		Question: fmt.Sprintf("Query: %s\n\nDocuments:\n%s", query, docList.String()),
	})
	if err != nil {
		return identity(len(docs)), nil
	}

	return permutation(parseIndices(resp), len(docs)), nil
}

func parseIndices(s string) []int {
	matches := indexPattern.FindAllString(s, -1)
	var indices []int
	for _, m := range matches {
		if i, err := strconv.Atoi(m); err == nil {
			indices = append(indices, i)
		}
	}
	return indices
}

// permutation drops duplicates and out-of-range indices, then appends any
// index the model left out in its original position order.
func permutation(indices []int, n int) []int {
	seen := make([]bool, n)
	out := make([]int, 0, n)
	for _, i := range indices {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			out = append(out, i)
		}
	}
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
