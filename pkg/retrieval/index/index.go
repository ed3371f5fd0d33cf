package index

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"ai-helpdesk-be/pkg/store"
)

// ErrIndexCorrupt signals that a persisted index failed to deserialize.
// Fatal at startup; the caller must not fall back to an empty index.
var ErrIndexCorrupt = errors.New("vector index corrupt")

// snapshotVersion guards the gob layout. Bump on incompatible changes.
const snapshotVersion = 1

// Entry is one (vector, document, metadata) triple owned by the index.
type Entry struct {
	Vector   []float32
	Document store.Document
	Metadata map[string]string
}

// Hit is a search result with its cosine similarity score.
type Hit struct {
	Document store.Document
	Metadata map[string]string
	Score    float64
}

// Index is an in-memory brute-force cosine similarity index. It is
// mutable during the build phase only; once serving, it is shared
// read-only across conversations, so Search takes no lock. Rebuilds
// construct a fresh Index and swap it atomically at the retriever.
type Index struct {
	entries []Entry
}

func New() *Index {
	return &Index{}
}

// Add appends entries in bulk. Vectors are L2-normalized on insertion so
// Search can use a plain inner product.
func (ix *Index) Add(entries []Entry) {
	for _, e := range entries {
		e.Vector = normalize(e.Vector)
		ix.entries = append(ix.entries, e)
	}
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries exposes the raw entries, e.g. for persisting them alongside
// the snapshot. Callers must treat the slice as read-only.
func (ix *Index) Entries() []Entry {
	return ix.entries
}

// Search returns at most k entries scoring >= minScore, ranked by cosine
// similarity descending. Ties keep insertion order. An empty index
// yields an empty result, not an error.
func (ix *Index) Search(queryVec []float32, k int, minScore float64) []Hit {
	if len(ix.entries) == 0 || k <= 0 {
		return nil
	}

	query := normalize(queryVec)

	hits := make([]Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		score := dot(e.Vector, query)
		if score >= minScore {
			hits = append(hits, Hit{Document: e.Document, Metadata: e.Metadata, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

type snapshot struct {
	Version int
	Entries []Entry
}

// Save serializes the index so it can be rebuilt across process restarts
// without recomputing embeddings.
func (ix *Index) Save(w io.Writer) error {
	enc := gob.NewEncoder(w)
	return enc.Encode(snapshot{Version: snapshotVersion, Entries: ix.entries})
}

// Load deserializes an index previously written by Save.
func Load(r io.Reader) (*Index, error) {
	var snap snapshot
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrIndexCorrupt, snap.Version)
	}
	return &Index{entries: snap.Entries}, nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
