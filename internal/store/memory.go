package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records []model.Record
	events  []model.Event
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source. Tests only.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) ListRecords(ctx context.Context) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Record, len(s.records))
	for i, r := range s.records {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, id string) (model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return cloneRecord(r), nil
		}
	}
	return model.Record{}, model.ErrNotFound
}

func (s *MemoryStore) InsertRecord(ctx context.Context, name string, encoding []float64, metadata model.Metadata) (string, error) {
	name, err := validateInsert(name, encoding)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.Name == name {
			return "", model.ErrDuplicateName
		}
	}

	now := s.now()
	rec := model.Record{
		ID:        uuid.New().String(),
		Name:      name,
		Encoding:  append([]float64(nil), encoding...),
		Metadata:  metadata.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records = append(s.records, rec)
	s.events = append(s.events, model.Event{
		ID:         uuid.New().String(),
		Action:     model.ActionRegistration,
		RecordID:   rec.ID,
		RecordName: rec.Name,
		Timestamp:  now,
		Details:    metadata.Clone(),
	})
	return rec.ID, nil
}

func (s *MemoryStore) DeleteRecord(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID != id {
			continue
		}
		s.records = append(s.records[:i], s.records[i+1:]...)
		s.events = append(s.events, model.Event{
			ID:         uuid.New().String(),
			Action:     model.ActionDeletion,
			RecordID:   r.ID,
			RecordName: r.Name,
			Timestamp:  s.now(),
		})
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// newest first; equal timestamps keep reverse insertion order
	out := make([]model.Event, len(s.events))
	for i, e := range s.events {
		out[len(s.events)-1-i] = e
		out[len(s.events)-1-i].Details = e.Details.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func cloneRecord(r model.Record) model.Record {
	r.Encoding = append([]float64(nil), r.Encoding...)
	r.Metadata = r.Metadata.Clone()
	return r
}
