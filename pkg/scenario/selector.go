package scenario

import (
	"log"
	"strings"

	"ai-helpdesk-be/pkg/retrieval"
)

// Searcher is the slice of the hybrid retriever the selector consumes.
type Searcher interface {
	Retrieve(query string, opts retrieval.Options) ([]retrieval.Result, error)
}

// DirectRule routes on an already-known context field. Cheap and
// deterministic; these handle the common cases without touching the
// retriever at all.
type DirectRule struct {
	Field      string
	Contains   []string
	ScenarioID string
}

// matches reports whether the context field value contains any of the
// accepted phrases.
func (r DirectRule) matches(ctxFields map[string]string) bool {
	value, ok := ctxFields[r.Field]
	if !ok {
		return false
	}
	value = strings.ToLower(value)
	for _, phrase := range r.Contains {
		if strings.Contains(value, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Selector chooses a scenario id through a priority cascade: direct
// context rules first, retriever similarity second, static default last.
// Candidates whose preconditions conflict with the known context are
// skipped at every tier. It never fails; the global fallback guarantees
// an id.
type Selector struct {
	rules     []DirectRule
	searcher  Searcher
	scenarios map[string]*Scenario
	defaults  map[string]string
	fallback  string
	threshold float64
	logger    *log.Logger
}

func NewSelector(
	rules []DirectRule,
	searcher Searcher,
	scenarios map[string]*Scenario,
	defaults map[string]string,
	fallback string,
	logger *log.Logger,
) *Selector {
	return &Selector{
		rules:     rules,
		searcher:  searcher,
		scenarios: scenarios,
		defaults:  defaults,
		fallback:  fallback,
		threshold: 0.5,
		logger:    logger,
	}
}

// Select evaluates the cascade. Rules run in declared order and the
// first satisfied rule wins regardless of how many also match.
func (s *Selector) Select(problemType string, ctxFields map[string]string, description string) string {
	for _, rule := range s.rules {
		if rule.matches(ctxFields) && s.eligible(rule.ScenarioID, ctxFields) {
			s.logger.Printf("[SELECT] Direct rule on %q -> %s", rule.Field, rule.ScenarioID)
			return rule.ScenarioID
		}
	}

	if id := s.selectByRetrieval(problemType, ctxFields, description); id != "" {
		return id
	}

	if id, ok := s.defaults[problemType]; ok && s.eligible(id, ctxFields) {
		s.logger.Printf("[SELECT] Static default for %q -> %s", problemType, id)
		return id
	}

	s.logger.Printf("[SELECT] Global default -> %s", s.fallback)
	return s.fallback
}

func (s *Selector) selectByRetrieval(problemType string, ctxFields map[string]string, description string) string {
	if s.searcher == nil || strings.TrimSpace(description) == "" {
		return ""
	}

	opts := retrieval.DefaultOptions()
	opts.TopK = 1
	opts.Threshold = s.threshold

	query := strings.TrimSpace(problemType + " " + description)
	results, err := s.searcher.Retrieve(query, opts)
	if err != nil {
		s.logger.Printf("[WARN] Retrieval fallback failed: %v", err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	id := results[0].Metadata["scenario_id"]
	if !s.eligible(id, ctxFields) {
		return ""
	}

	s.logger.Printf("[SELECT] Retrieval fallback (score %.3f) -> %s", results[0].HybridScore, id)
	return id
}

// eligible reports whether id names a loaded scenario whose
// preconditions do not conflict with the known context.
func (s *Selector) eligible(id string, ctxFields map[string]string) bool {
	sc, ok := s.scenarios[id]
	if !ok {
		return false
	}
	return sc.PreconditionsMet(ctxFields)
}
