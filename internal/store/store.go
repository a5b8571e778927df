package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

// RecordStore persists registered faces and their audit events. Every
// mutation writes its event in the same unit of work as the record change.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]model.Record, error)
	GetRecord(ctx context.Context, id string) (model.Record, error)
	// InsertRecord fails with model.ErrDuplicateName when the name is taken.
	InsertRecord(ctx context.Context, name string, encoding []float64, metadata model.Metadata) (string, error)
	DeleteRecord(ctx context.Context, id string) (bool, error)
	// ListEvents returns at most limit events, newest first. A non-positive
	// limit returns all of them.
	ListEvents(ctx context.Context, limit int) ([]model.Event, error)
	Close(ctx context.Context) error
}

func validateInsert(name string, encoding []float64) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name must not be empty")
	}
	if len(encoding) == 0 {
		return "", fmt.Errorf("encoding must not be empty")
	}
	return name, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrRecordStoreUnavailable, err)
}
