package store

// Chunk types assigned to knowledge documents at index-build time.
const (
	ChunkTypeStep       = "step"
	ChunkTypeSymptom    = "symptom"
	ChunkTypeDiagnostic = "diagnostic"
	ChunkTypeEscalation = "escalation"
	ChunkTypeCause      = "cause"
	ChunkTypeQuickCheck = "quick_check"
	ChunkTypeGeneral    = "general"
)

// Document is one chunk of knowledge text. Immutable once indexed; the
// whole corpus is rebuilt rather than edited in place.
type Document struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	Section     string `json:"section"`
	ChunkType   string `json:"chunk_type"`
	ProblemType string `json:"problem_type"`
}
