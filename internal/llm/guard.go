package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

// Guard bounds every provider call with a token bucket and a timeout.
// It never retries.
type Guard struct {
	limiter *rate.Limiter
	timeout time.Duration
}

// NewGuard creates a guard. A non-positive rate disables throttling and a
// zero timeout disables the deadline.
func NewGuard(requestsPerSecond float64, burst int, timeout time.Duration) *Guard {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Guard{
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
	}
}

func (g *Guard) call(ctx context.Context, fn func(context.Context) error) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return classify("provider", ctx.Err(), false)
		}
		return fmt.Errorf("%w: %w", model.ErrRateLimited, err)
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		return classify("provider", ctx.Err(), false)
	}
	return err
}

func (g *Guard) Generator(next LLMClient) LLMClient {
	if next == nil {
		return nil
	}
	return &guardedGenerator{next: next, guard: g}
}

// Embedder wraps next, keeping batch support when next has it.
func (g *Guard) Embedder(next EmbedderClient) EmbedderClient {
	if next == nil {
		return nil
	}
	if b, ok := next.(BatchEmbedderClient); ok {
		return &guardedBatchEmbedder{guardedEmbedder{next: next, guard: g}, b}
	}
	return &guardedEmbedder{next: next, guard: g}
}

type guardedGenerator struct {
	next  LLMClient
	guard *Guard
}

func (c *guardedGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var out string
	err := c.guard.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.next.Generate(ctx, prompt)
		return err
	})
	return out, err
}

type guardedEmbedder struct {
	next  EmbedderClient
	guard *Guard
}

func (c *guardedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := c.guard.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.next.Embed(ctx, text)
		return err
	})
	return out, err
}

type guardedBatchEmbedder struct {
	guardedEmbedder
	batch BatchEmbedderClient
}

func (c *guardedBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := c.guard.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.batch.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}
