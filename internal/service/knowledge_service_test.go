package service

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-helpdesk-be/internal/dto"
	"ai-helpdesk-be/pkg/embedding"
	"ai-helpdesk-be/pkg/retrieval"
	"ai-helpdesk-be/pkg/retrieval/index"
	"ai-helpdesk-be/pkg/store"
)

type fixedEmbedder struct{ vec []float32 }

func (f *fixedEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vec},
	}, nil
}

// knowledgeFixture wires a service around an in-memory index with one
// document aligned to the stub query vector and one orthogonal to it.
func knowledgeFixture(snapshotPath string) (IKnowledgeService, *retrieval.Retriever) {
	ix := index.New()
	ix.Add([]index.Entry{
		{
			Vector:   []float32{1, 0},
			Document: store.Document{Text: "Perkraukite maršrutizatorių ir patikrinkite router lemputes", Source: "internet/router.md", Section: "Router restart"},
			Metadata: map[string]string{"problem_type": "internet"},
		},
		{
			Vector:   []float32{0, 1},
			Document: store.Document{Text: "Televizoriaus kanalų paieška", Source: "tv/channels.md", Section: "Channel scan"},
			Metadata: map[string]string{"problem_type": "tv"},
		},
	})
	retriever := retrieval.NewRetriever(&fixedEmbedder{vec: []float32{1, 0}}, ix, log.New(io.Discard, "", 0))
	svc := NewKnowledgeService(nil, retriever, nil, nil, nil, nil, "", snapshotPath, retrieval.DefaultOptions(), nil)
	return svc, retriever
}

func TestLoadSnapshot_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	assert.NoError(t, os.WriteFile(path, []byte("not a gob snapshot"), 0o644))

	svc, retriever := knowledgeFixture(path)
	err := svc.LoadSnapshot()

	assert.ErrorIs(t, err, index.ErrIndexCorrupt)
	// The serving index must stay untouched when the snapshot is bad.
	assert.Equal(t, 2, retriever.Index().Len())
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	svc, _ := knowledgeFixture(filepath.Join(t.TempDir(), "absent.gob"))

	err := svc.LoadSnapshot()

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, index.ErrIndexCorrupt)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")

	saver, _ := knowledgeFixture(path)
	assert.NoError(t, saver.SaveSnapshot())

	loader := NewKnowledgeService(nil,
		retrieval.NewRetriever(&fixedEmbedder{vec: []float32{1, 0}}, index.New(), log.New(io.Discard, "", 0)),
		nil, nil, nil, nil, "", path, retrieval.DefaultOptions(), nil)
	assert.NoError(t, loader.LoadSnapshot())
}

func TestSearch_DefaultThresholdFiltersWeakHits(t *testing.T) {
	svc, _ := knowledgeFixture(filepath.Join(t.TempDir(), "index.gob"))

	res, err := svc.Search(context.Background(), &dto.KnowledgeSearchRequest{Query: "router neveikia"})

	assert.NoError(t, err)
	assert.Len(t, res.Hits, 1)
	assert.Equal(t, "Router restart", res.Hits[0].Section)
}

func TestSearch_ExplicitZeroThresholdReturnsEverything(t *testing.T) {
	svc, _ := knowledgeFixture(filepath.Join(t.TempDir(), "index.gob"))

	zero := 0.0
	res, err := svc.Search(context.Background(), &dto.KnowledgeSearchRequest{
		Query:     "router neveikia",
		Threshold: &zero,
	})

	assert.NoError(t, err)
	assert.Len(t, res.Hits, 2)
}
