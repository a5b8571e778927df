package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_UnmarshalKeepsOrder(t *testing.T) {
	var m Metadata
	err := json.Unmarshal([]byte(`{"zeta": "z", "alpha": 1.5, "mid": true}`), &m)
	require.NoError(t, err)

	require.Len(t, m, 3)
	assert.Equal(t, "zeta", m[0].Key)
	assert.Equal(t, "alpha", m[1].Key)
	assert.Equal(t, "mid", m[2].Key)

	n, ok := m[1].Value.Num()
	assert.True(t, ok)
	assert.Equal(t, 1.5, n)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"z","alpha":1.5,"mid":true}`, string(out))
}

func TestMetadata_ScalarVariants(t *testing.T) {
	var m Metadata
	raw := `{"joined": "2024-01-01T10:00:00Z", "address": {"city": "Paris"}, "tags": ["a", "b"], "note": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	joined, ok := m.Get("joined")
	require.True(t, ok)
	ts, isTime := joined.Timestamp()
	require.True(t, isTime)
	assert.True(t, ts.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-01 10:00:00", joined.String())

	assert.Equal(t, `{"city":"Paris"}`, m.GetString("address"))
	assert.Equal(t, `["a","b"]`, m.GetString("tags"))
	assert.Equal(t, "", m.GetString("note"))
}

func TestMetadata_SetReplacesInPlace(t *testing.T) {
	m := Metadata{}
	m.Set("a", String("1"))
	m.Set("b", String("2"))
	m.Set("a", Number(3))

	require.Len(t, m, 2)
	assert.Equal(t, "a", m[0].Key)
	assert.Equal(t, "3", m[0].Value.String())

	clone := m.Clone()
	clone.Set("c", Bool(false))
	assert.Len(t, m, 2)
	assert.True(t, m.Equal(clone[:2]))
}

func TestMetadata_NilMarshalsAsObject(t *testing.T) {
	var m Metadata
	out, err := json.Marshal(struct {
		Metadata Metadata `json:"metadata"`
	}{Metadata: m})
	require.NoError(t, err)
	assert.Equal(t, `{"metadata":{}}`, string(out))
}

func TestMetadata_RejectsNonObject(t *testing.T) {
	var m Metadata
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &m))
}
