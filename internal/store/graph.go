package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/driver"
)

// Cypher is the part of a Bolt driver the graph store needs.
// *driver.MemgraphDriver satisfies it.
type Cypher interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// GraphStore keeps records as :Person nodes and events as :Event nodes
// linked to the person they were written for.
type GraphStore struct {
	driver Cypher
	now    func() time.Time
}

func NewGraphStore(ctx context.Context, d Cypher) (*GraphStore, error) {
	if err := d.BuildIndices(ctx); err != nil {
		return nil, fmt.Errorf("building indices: %w", err)
	}
	return &GraphStore{
		driver: d,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *GraphStore) ListRecords(ctx context.Context) ([]model.Record, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.ListPersonsQuery, nil)
	if err != nil {
		return nil, unavailable("list records", err)
	}

	records := make([]model.Record, 0, len(res.Records))
	for _, row := range res.Records {
		rec, err := personFromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *GraphStore) GetRecord(ctx context.Context, id string) (model.Record, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.GetPersonQuery, map[string]interface{}{"id": id})
	if err != nil {
		return model.Record{}, unavailable("get record", err)
	}
	if len(res.Records) == 0 {
		return model.Record{}, model.ErrNotFound
	}
	return personFromRow(res.Records[0])
}

func (s *GraphStore) InsertRecord(ctx context.Context, name string, encoding []float64, metadata model.Metadata) (string, error) {
	name, err := validateInsert(name, encoding)
	if err != nil {
		return "", err
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	id := uuid.New().String()
	params := map[string]interface{}{
		"id":         id,
		"event_id":   uuid.New().String(),
		"action":     string(model.ActionRegistration),
		"name":       name,
		"encoding":   encoding,
		"metadata":   string(metaJSON),
		"created_at": s.now().UTC().Format(sortableTime),
	}

	res, err := s.driver.ExecuteQuery(ctx, driver.InsertPersonQuery, params)
	if err != nil {
		if isConstraintViolation(err) {
			return "", model.ErrDuplicateName
		}
		return "", unavailable("insert record", err)
	}
	if len(res.Records) == 0 {
		return "", model.ErrDuplicateName
	}
	return id, nil
}

func (s *GraphStore) DeleteRecord(ctx context.Context, id string) (bool, error) {
	params := map[string]interface{}{
		"id":        id,
		"event_id":  uuid.New().String(),
		"action":    string(model.ActionDeletion),
		"timestamp": s.now().UTC().Format(sortableTime),
	}
	res, err := s.driver.ExecuteQuery(ctx, driver.DeletePersonQuery, params)
	if err != nil {
		return false, unavailable("delete record", err)
	}
	return len(res.Records) > 0, nil
}

func (s *GraphStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	res, err := s.driver.ExecuteQuery(ctx, driver.ListEventsQuery, map[string]interface{}{"limit": int64(limit)})
	if err != nil {
		return nil, unavailable("list events", err)
	}

	events := make([]model.Event, 0, len(res.Records))
	for _, row := range res.Records {
		e := model.Event{
			ID:         stringValue(row, "id"),
			Action:     model.Action(stringValue(row, "action")),
			RecordID:   stringValue(row, "record_id"),
			RecordName: stringValue(row, "record_name"),
		}
		if e.Timestamp, err = parseSortable(stringValue(row, "timestamp")); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if err := unmarshalMetadata(stringValue(row, "details"), &e.Details); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *GraphStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func personFromRow(row *neo4j.Record) (model.Record, error) {
	rec := model.Record{
		ID:   stringValue(row, "id"),
		Name: stringValue(row, "name"),
	}

	if raw, ok := row.Get("encoding"); ok {
		list, _ := raw.([]interface{})
		rec.Encoding = make([]float64, 0, len(list))
		for _, v := range list {
			switch f := v.(type) {
			case float64:
				rec.Encoding = append(rec.Encoding, f)
			case int64:
				rec.Encoding = append(rec.Encoding, float64(f))
			default:
				return rec, fmt.Errorf("person %s: unexpected encoding element %T", rec.ID, v)
			}
		}
	}

	var err error
	if err = unmarshalMetadata(stringValue(row, "metadata"), &rec.Metadata); err != nil {
		return rec, fmt.Errorf("person %s: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = parseSortable(stringValue(row, "created_at")); err != nil {
		return rec, fmt.Errorf("person %s: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = parseSortable(stringValue(row, "updated_at")); err != nil {
		return rec, fmt.Errorf("person %s: %w", rec.ID, err)
	}
	return rec, nil
}

func stringValue(row *neo4j.Record, key string) string {
	v, ok := row.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func parseSortable(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(sortableTime, s)
}

func unmarshalMetadata(s string, dst *model.Metadata) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

func isConstraintViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint") && (strings.Contains(msg, "unique") || strings.Contains(msg, "already exists"))
}
