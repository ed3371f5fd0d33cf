package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-helpdesk-be/pkg/store"
)

const sampleMarkdown = `Intro paragraph before any heading.

# Simptomai

Internetas visiškai neveikia, maršrutizatoriaus lemputės dega raudonai.

## Diagnostikos žingsniai

1. Patikrinkite maršrutizatoriaus lemputes.
2. Perkraukite maršrutizatorių.

## Escalation criteria

Three consecutive failed steps, or the customer asks for a technician.

## Notes

`

func TestChunkMarkdown_SplitsByHeading(t *testing.T) {
	items := ChunkMarkdown(sampleMarkdown, "internet/no_connection.md", "internet")

	// The empty Notes section is dropped.
	assert.Len(t, items, 4)

	assert.Equal(t, "", items[0].Document.Section)
	assert.Contains(t, items[0].Document.Text, "Intro paragraph")

	assert.Equal(t, "Simptomai", items[1].Document.Section)
	assert.Equal(t, store.ChunkTypeSymptom, items[1].Document.ChunkType)

	assert.Equal(t, "Diagnostikos žingsniai", items[2].Document.Section)
	assert.Equal(t, store.ChunkTypeDiagnostic, items[2].Document.ChunkType)

	assert.Equal(t, store.ChunkTypeEscalation, items[3].Document.ChunkType)
}

func TestChunkMarkdown_MetadataMirrorsDocument(t *testing.T) {
	items := ChunkMarkdown(sampleMarkdown, "internet/no_connection.md", "internet")

	for _, item := range items {
		assert.Equal(t, item.Document.Source, item.Metadata["source"])
		assert.Equal(t, item.Document.ChunkType, item.Metadata["chunk_type"])
		assert.Equal(t, "internet", item.Metadata["problem_type"])
	}
}

func TestChunkMarkdown_EmptyContent(t *testing.T) {
	items := ChunkMarkdown("", "empty.md", "general")
	assert.Empty(t, items)
}

func TestClassifyHeading(t *testing.T) {
	assert.Equal(t, store.ChunkTypeStep, classifyHeading("Troubleshooting steps"))
	assert.Equal(t, store.ChunkTypeStep, classifyHeading("Žingsniai"))
	assert.Equal(t, store.ChunkTypeCause, classifyHeading("Dažnos priežastys"))
	assert.Equal(t, store.ChunkTypeQuickCheck, classifyHeading("Quick checks"))
	assert.Equal(t, store.ChunkTypeGeneral, classifyHeading("Changelog"))
}

func TestLoadDir_ProblemTypeFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	internetDir := filepath.Join(root, "internet")
	assert.NoError(t, os.MkdirAll(internetDir, 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(internetDir, "drops.md"), []byte("# Simptomai\n\nRyšys nutrūkinėja.\n"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(root, "general.md"), []byte("General guidance text.\n"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(root, "ignore.txt"), []byte("not markdown"), 0o644))

	items, err := LoadDir(root)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	byType := map[string]int{}
	for _, item := range items {
		byType[item.Document.ProblemType]++
	}
	assert.Equal(t, 1, byType["internet"])
	assert.Equal(t, 1, byType["general"])
}
