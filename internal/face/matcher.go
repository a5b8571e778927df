package face

import (
	"math"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
)

const (
	DefaultTolerance = 0.6
	UnknownName      = "Unknown"
)

type Recognition struct {
	Name        string      `json:"name"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
	PersonID    string      `json:"person_id"`
}

// Matcher labels detections with the closest known record within tolerance.
type Matcher struct {
	Tolerance float64
}

func NewMatcher(tolerance float64) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matcher{Tolerance: tolerance}
}

func (m *Matcher) Match(detections []Detection, known []model.Record) []Recognition {
	results := make([]Recognition, 0, len(detections))
	for _, d := range detections {
		best, bestDist := -1, math.Inf(1)
		for i, k := range known {
			dist, ok := Distance(d.Encoding, k.Encoding)
			if ok && dist < bestDist {
				best, bestDist = i, dist
			}
		}

		if best >= 0 && bestDist <= m.Tolerance {
			results = append(results, Recognition{
				Name:        known[best].Name,
				Confidence:  1 - bestDist,
				BoundingBox: d.Box,
				PersonID:    known[best].ID,
			})
			continue
		}
		results = append(results, Recognition{Name: UnknownName, BoundingBox: d.Box})
	}
	return results
}

// Distance is the Euclidean distance between two encodings. ok is false
// when their lengths differ.
func Distance(a, b []float64) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), true
}
