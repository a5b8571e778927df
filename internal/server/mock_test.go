package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/store"
)

// FailingEmbedder fails every call, as a provider outage would.
type FailingEmbedder struct{}

func (FailingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("%w: provider down", model.ErrUnavailable)
}

// DownStore behaves like a store whose backend cannot be reached.
type DownStore struct {
	store.RecordStore
}

var errDown = fmt.Errorf("list: %w: %w", model.ErrRecordStoreUnavailable, errors.New("connection refused"))

func (DownStore) ListRecords(ctx context.Context) ([]model.Record, error) {
	return nil, errDown
}

func (DownStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	return nil, errDown
}
