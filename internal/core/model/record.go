package model

import "time"

// Record is a registered identity.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Encoding  []float64 `json:"encoding,omitempty"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Action string

const (
	ActionRegistration Action = "registration"
	ActionDeletion     Action = "deletion"
)

// Event is an append-only audit entry written alongside every record mutation.
type Event struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	RecordID   string    `json:"record_id"`
	RecordName string    `json:"person_name"`
	Timestamp  time.Time `json:"timestamp"`
	Details    Metadata  `json:"details"`
}
