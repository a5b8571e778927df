package model

type DocumentKind string

const (
	KindRecord DocumentKind = "record"
	KindEvent  DocumentKind = "event"
)

// Document is the text form of one record or event. Never persisted.
type Document struct {
	ID       string
	Kind     DocumentKind
	Text     string
	Metadata Metadata
}

// Chunk is a slice of a document's text. Start and End are rune offsets
// into the parent text.
type Chunk struct {
	DocumentID string
	Index      int
	Start      int
	End        int
	Text       string
	Metadata   Metadata
}

type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Source is a retrieved chunk cited by an answer.
type Source struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
	Score    float64  `json:"score"`
}
