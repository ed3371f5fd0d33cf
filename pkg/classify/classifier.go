package classify

import (
	"context"

	"ai-helpdesk-be/pkg/llm"
)

// Outcome is the closed set of reply judgements the step engine consumes.
// The six values are load-bearing: the engine is a pure transition
// function over them and performs no language understanding of its own.
type Outcome string

const (
	OutcomeStepSuccess     Outcome = "step_success"
	OutcomeStepFailure     Outcome = "step_failure"
	OutcomeNeedsHelp       Outcome = "needs_help"
	OutcomeWantsEscalation Outcome = "wants_escalation"
	OutcomeResolved        Outcome = "resolved"
	OutcomeUnclear         Outcome = "unclear"
)

// Valid reports whether o is one of the six defined outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeStepSuccess, OutcomeStepFailure, OutcomeNeedsHelp,
		OutcomeWantsEscalation, OutcomeResolved, OutcomeUnclear:
		return true
	}
	return false
}

// Classification is the structured judgement for one user reply. Detail
// carries free text matched against a step's expected-outcome patterns.
type Classification struct {
	Outcome    Outcome `json:"outcome"`
	Detail     string  `json:"detail"`
	Confidence float32 `json:"confidence"`
}

// Classifier maps (instruction, history, reply) to a Classification.
// Implementations may be prompt-based, rules-based, or test doubles;
// anything satisfying this contract keeps the engine deterministic.
type Classifier interface {
	Classify(ctx context.Context, instruction string, history []llm.Message, reply string) (*Classification, error)
}
