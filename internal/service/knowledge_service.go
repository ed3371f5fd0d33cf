package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-helpdesk-be/internal/dto"
	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/pkg/logger"
	"ai-helpdesk-be/internal/repository/unitofwork"
	"ai-helpdesk-be/pkg/embedding"
	"ai-helpdesk-be/pkg/knowledge"
	"ai-helpdesk-be/pkg/retrieval"
	"ai-helpdesk-be/pkg/retrieval/index"
	"ai-helpdesk-be/pkg/scenario"
	"ai-helpdesk-be/pkg/store"
)

// ReindexTopic is the in-process topic carrying rebuild requests.
const ReindexTopic = "KNOWLEDGE_REINDEX"

type IKnowledgeService interface {
	Search(ctx context.Context, req *dto.KnowledgeSearchRequest) (*dto.KnowledgeSearchResponse, error)
	RequestReindex(requestedBy string) error
	RebuildIndex(ctx context.Context) error
	HydrateFromStore(ctx context.Context) (int, error)
	LoadSnapshot() error
	SaveSnapshot() error
}

type knowledgeService struct {
	uowFactory   unitofwork.RepositoryFactory
	retriever    *retrieval.Retriever
	builder      *knowledge.Builder
	embedder     embedding.EmbeddingProvider
	scenarios    map[string]*scenario.Scenario
	pubSub       *gochannel.GoChannel
	knowledgeDir string
	snapshotPath string
	defaults     retrieval.Options
	logger       logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	retriever *retrieval.Retriever,
	builder *knowledge.Builder,
	embedder embedding.EmbeddingProvider,
	scenarios map[string]*scenario.Scenario,
	pubSub *gochannel.GoChannel,
	knowledgeDir string,
	snapshotPath string,
	defaults retrieval.Options,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:   uowFactory,
		retriever:    retriever,
		builder:      builder,
		embedder:     embedder,
		scenarios:    scenarios,
		pubSub:       pubSub,
		knowledgeDir: knowledgeDir,
		snapshotPath: snapshotPath,
		defaults:     defaults,
		logger:       log,
	}
}

func (s *knowledgeService) Search(ctx context.Context, req *dto.KnowledgeSearchRequest) (*dto.KnowledgeSearchResponse, error) {
	opts := s.defaults
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	filter := map[string]string{}
	if req.ProblemType != "" {
		filter["problem_type"] = req.ProblemType
	}
	if req.ChunkType != "" {
		filter["chunk_type"] = req.ChunkType
	}
	if len(filter) > 0 {
		opts.Filter = filter
	}

	results, err := s.retriever.Retrieve(req.Query, opts)
	if err != nil {
		return nil, err
	}

	hits := make([]dto.KnowledgeHitDTO, 0, len(results))
	for _, r := range results {
		hits = append(hits, dto.KnowledgeHitDTO{
			Text:            r.Document.Text,
			Source:          r.Document.Source,
			Section:         r.Document.Section,
			ChunkType:       r.Document.ChunkType,
			ProblemType:     r.Document.ProblemType,
			SemanticScore:   r.SemanticScore,
			KeywordScore:    r.KeywordScore,
			HybridScore:     r.HybridScore,
			MatchedKeywords: r.MatchedKeywords,
		})
	}

	return &dto.KnowledgeSearchResponse{Query: req.Query, Hits: hits}, nil
}

// RequestReindex queues a rebuild; the consumer picks it up so the HTTP
// request returns immediately.
func (s *knowledgeService) RequestReindex(requestedBy string) error {
	msg := message.NewMessage(watermill.NewUUID(), []byte(requestedBy))
	return s.pubSub.Publish(ReindexTopic, msg)
}

// RebuildIndex re-chunks the knowledge directory, embeds everything,
// persists the embeddings, and atomically swaps the serving index. A
// failure leaves the previous index serving.
func (s *knowledgeService) RebuildIndex(ctx context.Context) error {
	items, err := knowledge.LoadDir(s.knowledgeDir)
	if err != nil {
		return fmt.Errorf("load knowledge dir: %w", err)
	}

	// Scenario digests are indexed alongside the knowledge chunks so
	// similarity search can also pick a scenario directly.
	for _, sc := range s.scenarios {
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

	idx, err := s.builder.Build(items)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := s.persistChunks(ctx, idx); err != nil {
		s.logger.Warn("Knowledge", "Failed to persist embeddings, serving from memory only", map[string]interface{}{"error": err.Error()})
	}

	s.retriever.SwapIndex(idx)
	s.logger.Info("Knowledge", "Index rebuilt", map[string]interface{}{"chunks": idx.Len()})

	if err := s.SaveSnapshot(); err != nil {
		s.logger.Warn("Knowledge", "Failed to save index snapshot", map[string]interface{}{"error": err.Error()})
	}

	return nil
}

func (s *knowledgeService) persistChunks(ctx context.Context, idx *index.Index) error {
	entries := idx.Entries()
	chunks := make([]entity.KnowledgeChunk, 0, len(entries))
	for _, e := range entries {
		chunks = append(chunks, entity.KnowledgeChunk{
			Text:        e.Document.Text,
			Source:      e.Document.Source,
			Section:     e.Document.Section,
			ChunkType:   e.Document.ChunkType,
			ProblemType: e.Document.ProblemType,
			ScenarioId:  e.Metadata["scenario_id"],
			Embedding:   e.Vector,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.KnowledgeEmbeddingRepository().DeleteAll(ctx); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.KnowledgeEmbeddingRepository().CreateBatch(ctx, chunks); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

// HydrateFromStore rebuilds the in-memory index from persisted
// embeddings, skipping the embedding model entirely.
func (s *knowledgeService) HydrateFromStore(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.KnowledgeEmbeddingRepository().FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	idx := index.New()
	entries := make([]index.Entry, 0, len(chunks))
	for _, c := range chunks {
		metadata := map[string]string{
			"source":       c.Source,
			"section":      c.Section,
			"chunk_type":   c.ChunkType,
			"problem_type": c.ProblemType,
		}
		if c.ScenarioId != "" {
			metadata["scenario_id"] = c.ScenarioId
		}
		entries = append(entries, index.Entry{
			Vector: c.Embedding,
			Document: store.Document{
				Text:        c.Text,
				Source:      c.Source,
				Section:     c.Section,
				ChunkType:   c.ChunkType,
				ProblemType: c.ProblemType,
			},
			Metadata: metadata,
		})
	}
	idx.Add(entries)

	s.retriever.SwapIndex(idx)
	return idx.Len(), nil
}

// LoadSnapshot restores the serving index from the gob snapshot file.
func (s *knowledgeService) LoadSnapshot() error {
	f, err := os.Open(s.snapshotPath)
	if err != nil {
		return err
	}
	defer f.Close()

	idx, err := index.Load(f)
	if err != nil {
		return err
	}
	s.retriever.SwapIndex(idx)
	return nil
}

func (s *knowledgeService) SaveSnapshot() error {
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(s.snapshotPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return s.retriever.Index().Save(f)
}
