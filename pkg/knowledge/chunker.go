package knowledge

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-helpdesk-be/pkg/store"
)

// Item is one chunk ready for embedding: the document plus the metadata
// the retriever filters and routes on.
type Item struct {
	Document store.Document
	Metadata map[string]string
}

// headingMarkers maps heading keywords (English and Lithuanian) to the
// chunk type recorded in metadata. Matching is substring-based on the
// lowercased heading text.
// Ordered most specific first: "Diagnostikos žingsniai" should classify
// as diagnostic, not step.
var headingMarkers = []struct {
	keyword   string
	chunkType string
}{
	{"diagnost", store.ChunkTypeDiagnostic},
	{"eskalac", store.ChunkTypeEscalation},
	{"escalat", store.ChunkTypeEscalation},
	{"greita patikra", store.ChunkTypeQuickCheck},
	{"quick check", store.ChunkTypeQuickCheck},
	{"simptom", store.ChunkTypeSymptom},
	{"symptom", store.ChunkTypeSymptom},
	{"priežast", store.ChunkTypeCause},
	{"cause", store.ChunkTypeCause},
	{"žingsn", store.ChunkTypeStep},
	{"step", store.ChunkTypeStep},
}

// classifyHeading infers the chunk type from heading text.
func classifyHeading(heading string) string {
	lower := strings.ToLower(heading)
	for _, marker := range headingMarkers {
		if strings.Contains(lower, marker.keyword) {
			return marker.chunkType
		}
	}
	return store.ChunkTypeGeneral
}

// ChunkMarkdown splits markdown into one chunk per heading section. Text
// before the first heading becomes a chunk with an empty section name.
// Blank-only sections are dropped.
func ChunkMarkdown(content, source, problemType string) []Item {
	var items []Item
	var heading string
	var body strings.Builder

	flush := func() {
		text := strings.TrimSpace(body.String())
		body.Reset()
		if text == "" {
			return
		}
		chunkType := classifyHeading(heading)
		items = append(items, Item{
			Document: store.Document{
				Text:        text,
				Source:      source,
				Section:     heading,
				ChunkType:   chunkType,
				ProblemType: problemType,
			},
			Metadata: map[string]string{
				"source":       source,
				"section":      heading,
				"chunk_type":   chunkType,
				"problem_type": problemType,
			},
		})
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			flush()
			heading = strings.TrimSpace(strings.TrimLeft(line, "# "))
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	return items
}

// LoadDir walks a knowledge directory laid out as
// <root>/<problem_type>/<file>.md and chunks every markdown file. The
// subdirectory name becomes the problem_type for all chunks in it.
func LoadDir(root string) ([]Item, error) {
	var items []Item

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		problemType := "general"
		if dir := filepath.Dir(rel); dir != "." {
			problemType = strings.Split(dir, string(filepath.Separator))[0]
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read knowledge file %s: %w", path, err)
		}

		items = append(items, ChunkMarkdown(string(content), rel, problemType)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk knowledge dir %s: %w", root, err)
	}

	return items, nil
}
