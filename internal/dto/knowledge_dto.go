package dto

type KnowledgeSearchRequest struct {
	Query       string   `json:"query" validate:"required"`
	ProblemType string   `json:"problem_type,omitempty"`
	ChunkType   string   `json:"chunk_type,omitempty"`
	TopK        int      `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
	Threshold   *float64 `json:"threshold,omitempty" validate:"omitempty,min=0,max=1"`
}

type KnowledgeHitDTO struct {
	Text            string   `json:"text"`
	Source          string   `json:"source"`
	Section         string   `json:"section"`
	ChunkType       string   `json:"chunk_type"`
	ProblemType     string   `json:"problem_type"`
	SemanticScore   float64  `json:"semantic_score"`
	KeywordScore    float64  `json:"keyword_score"`
	HybridScore     float64  `json:"hybrid_score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

type KnowledgeSearchResponse struct {
	Query string            `json:"query"`
	Hits  []KnowledgeHitDTO `json:"hits"`
}

type ReindexResponse struct {
	Requested bool `json:"requested"`
}
