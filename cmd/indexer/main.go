package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"ai-helpdesk-be/internal/config"
	"ai-helpdesk-be/pkg/embedding"
	"ai-helpdesk-be/pkg/knowledge"
	"ai-helpdesk-be/pkg/scenario"
	"ai-helpdesk-be/pkg/store"
)

// Offline index builder. Chunks the knowledge directory, embeds every
// chunk plus the scenario digests, and writes the gob snapshot the REST
// server warms from. Lets operators pre-bake an index without a running
// database or a live embedding hit on first request.
func main() {
	knowledgeDir := flag.String("knowledge", "", "knowledge directory (default from config)")
	scenarioDir := flag.String("scenarios", "", "scenario directory (default from config)")
	out := flag.String("out", "", "snapshot output path (default from config)")
	flag.Parse()

	cfg := config.Load()
	if *knowledgeDir == "" {
		*knowledgeDir = cfg.App.KnowledgeDir
	}
	if *scenarioDir == "" {
		*scenarioDir = cfg.App.ScenarioDir
	}
	if *out == "" {
		*out = cfg.App.IndexSnapshotPath
	}

	color.Cyan("🚀 Building knowledge index")
	color.Yellow("knowledge: %s", *knowledgeDir)
	color.Yellow("scenarios: %s", *scenarioDir)

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	} else {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	}
	embedder := embedding.NewCachedProvider(provider, cfg.Ai.EmbeddingCacheSize)

	items, err := knowledge.LoadDir(*knowledgeDir)
	if err != nil {
		color.Red("Failed to load knowledge dir: %v", err)
		os.Exit(1)
	}
	color.Green("Chunked %d knowledge items", len(items))

	scenarios, err := scenario.LoadAll(*scenarioDir)
	if err != nil {
		color.Red("Failed to load scenarios: %v", err)
		os.Exit(1)
	}
	for _, sc := range scenarios {
		items = append(items, knowledge.Item{
			Document: store.Document{
				Text:        sc.Digest(),
				Source:      "scenario:" + sc.ID,
				ChunkType:   store.ChunkTypeGeneral,
				ProblemType: sc.ProblemType,
			},
			Metadata: map[string]string{
				"scenario_id":  sc.ID,
				"problem_type": sc.ProblemType,
			},
		})
	}
	color.Green("Loaded %d scenarios", len(scenarios))

	builder := knowledge.NewBuilder(embedder, log.New(os.Stdout, "", log.LstdFlags))
	idx, err := builder.Build(items)
	if err != nil {
		color.Red("Failed to build index: %v", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		color.Red("Failed to create output dir: %v", err)
		os.Exit(1)
	}
	f, err := os.Create(*out)
	if err != nil {
		color.Red("Failed to create snapshot file: %v", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := idx.Save(f); err != nil {
		color.Red("Failed to write snapshot: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Wrote %d entries to %s", idx.Len(), *out)
}
