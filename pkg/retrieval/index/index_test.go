package index

import (
	"bytes"
	"testing"

	"ai-helpdesk-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(text string) store.Document {
	return store.Document{Text: text, ChunkType: store.ChunkTypeGeneral}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := New()
	hits := ix.Search([]float32{1, 0, 0}, 5, 0.0)
	assert.Empty(t, hits)
}

func TestSearchRanksByCosine(t *testing.T) {
	ix := New()
	ix.Add([]Entry{
		{Vector: []float32{1, 0, 0}, Document: doc("exact")},
		{Vector: []float32{0, 1, 0}, Document: doc("orthogonal")},
		{Vector: []float32{1, 1, 0}, Document: doc("diagonal")},
	})

	hits := ix.Search([]float32{1, 0, 0}, 3, -1.0)
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].Document.Text)
	assert.Equal(t, "diagonal", hits[1].Document.Text)
	assert.Equal(t, "orthogonal", hits[2].Document.Text)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestSearchNormalizesOnInsertAndQuery(t *testing.T) {
	ix := New()
	// Same direction, wildly different magnitudes.
	ix.Add([]Entry{{Vector: []float32{10, 0, 0}, Document: doc("big")}})

	hits := ix.Search([]float32{0.001, 0, 0}, 1, 0.9)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestSearchRespectsMinScoreAndK(t *testing.T) {
	ix := New()
	ix.Add([]Entry{
		{Vector: []float32{1, 0}, Document: doc("a")},
		{Vector: []float32{0.9, 0.1}, Document: doc("b")},
		{Vector: []float32{0, 1}, Document: doc("c")},
	})

	hits := ix.Search([]float32{1, 0}, 2, 0.5)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Score, 0.5)
	}

	hits = ix.Search([]float32{1, 0}, 1, 0.5)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Document.Text)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	ix := New()
	ix.Add([]Entry{
		{Vector: []float32{1, 0}, Document: doc("first")},
		{Vector: []float32{1, 0}, Document: doc("second")},
		{Vector: []float32{1, 0}, Document: doc("third")},
	})

	hits := ix.Search([]float32{1, 0}, 3, 0.0)
	require.Len(t, hits, 3)
	assert.Equal(t, "first", hits[0].Document.Text)
	assert.Equal(t, "second", hits[1].Document.Text)
	assert.Equal(t, "third", hits[2].Document.Text)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ix := New()
	ix.Add([]Entry{
		{Vector: []float32{1, 0}, Document: doc("a"), Metadata: map[string]string{"scenario_id": "internet_no_connection"}},
		{Vector: []float32{0, 1}, Document: doc("b")},
	})

	var buf bytes.Buffer
	require.NoError(t, ix.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	hits := loaded.Search([]float32{1, 0}, 1, 0.5)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Document.Text)
	assert.Equal(t, "internet_no_connection", hits[0].Metadata["scenario_id"])
}

func TestLoadCorruptPayload(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("not a gob stream")))
	assert.ErrorIs(t, err, ErrIndexCorrupt)
}
