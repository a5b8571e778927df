package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

// classify tags a provider error as rate limited or unavailable while keeping
// the original error in the chain.
func classify(provider string, err error, rateLimited bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrRateLimited) || errors.Is(err, model.ErrUnavailable) {
		return err
	}
	if rateLimited {
		return fmt.Errorf("%s: %w: %w", provider, model.ErrRateLimited, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: timed out: %w", provider, model.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", provider, model.ErrUnavailable, err)
}
