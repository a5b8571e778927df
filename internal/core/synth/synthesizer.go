package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

// Synthesizer renders records and events as indexable documents.
type Synthesizer struct {
	// Now substitutes missing timestamps.
	Now func() time.Time
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Now: time.Now}
}

// Documents returns one document per record followed by one per event,
// in input order.
func (s *Synthesizer) Documents(records []model.Record, events []model.Event) []model.Document {
	docs := make([]model.Document, 0, len(records)+len(events))
	for _, r := range records {
		docs = append(docs, s.Record(r))
	}
	for i, e := range events {
		doc := s.Event(e)
		if e.ID == "" {
			doc.ID = fmt.Sprintf("event:%d", i)
		}
		docs = append(docs, doc)
	}
	return docs
}

func (s *Synthesizer) Record(r model.Record) model.Document {
	created := s.timestamp(r.CreatedAt)
	name := orUnknown(r.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "Person: %s\n", name)
	fmt.Fprintf(&b, "Registration Date: %s\n", created.Format(model.TimeLayout))
	fmt.Fprintf(&b, "ID: %s\n", r.ID)
	writeMapping(&b, "Metadata", r.Metadata)

	meta := model.Metadata{}
	meta.Set("kind", model.String(string(model.KindRecord)))
	meta.Set("name", model.String(name))
	meta.Set("id", model.String(r.ID))
	meta.Set("created_at", model.Time(created))

	return model.Document{
		ID:       "record:" + r.ID,
		Kind:     model.KindRecord,
		Text:     b.String(),
		Metadata: meta,
	}
}

func (s *Synthesizer) Event(e model.Event) model.Document {
	ts := s.timestamp(e.Timestamp)
	action := string(e.Action)
	if action == "" {
		action = "Unknown"
	}
	person := orUnknown(e.RecordName)

	var b strings.Builder
	fmt.Fprintf(&b, "Action: %s\n", action)
	fmt.Fprintf(&b, "Person: %s\n", person)
	fmt.Fprintf(&b, "Timestamp: %s\n", ts.Format(model.TimeLayout))
	writeMapping(&b, "Details", e.Details)

	meta := model.Metadata{}
	meta.Set("kind", model.String(string(model.KindEvent)))
	meta.Set("action", model.String(action))
	meta.Set("person_name", model.String(person))
	meta.Set("record_id", model.String(e.RecordID))
	meta.Set("timestamp", model.Time(ts))

	return model.Document{
		ID:       "event:" + e.ID,
		Kind:     model.KindEvent,
		Text:     b.String(),
		Metadata: meta,
	}
}

func (s *Synthesizer) timestamp(t time.Time) time.Time {
	if !t.IsZero() {
		return t
	}
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func writeMapping(b *strings.Builder, title string, m model.Metadata) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, f := range m {
		fmt.Fprintf(b, "  %s: %s\n", f.Key, f.Value.String())
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
