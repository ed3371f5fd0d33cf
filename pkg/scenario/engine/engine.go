package engine

import (
	"fmt"
	"log"

	"ai-helpdesk-be/pkg/classify"
	"ai-helpdesk-be/pkg/scenario"
)

// Phase is the engine's lifecycle state for one conversation.
type Phase string

const (
	PhaseNotStarted   Phase = "not_started"
	PhaseAwaitingStep Phase = "awaiting_step"
	PhaseResolved     Phase = "resolved"
	PhaseEscalated    Phase = "escalated"
)

// EscalationReason explains a terminal Escalated phase.
type EscalationReason string

const (
	ReasonCustomerRequested       EscalationReason = "customer_requested"
	ReasonTroubleshootingExhausted EscalationReason = "troubleshooting_exhausted"
	ReasonTurnLimitExceeded       EscalationReason = "turn_limit_exceeded"
)

// HelpFallback is emitted when a step has no help text to offer.
const HelpFallback = "No further help is available for this step. You can try it as described, or ask for a technician."

// State is the per-conversation mutable record. It is owned exclusively
// by the conversation handling it and mutated only through an Engine.
type State struct {
	ScenarioID          string `json:"scenario_id"`
	Phase               Phase  `json:"phase"`
	CurrentStep         int    `json:"current_step"`
	CompletedSteps      []int  `json:"completed_steps"`
	SkippedSteps        []int  `json:"skipped_steps"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	TurnCount           int    `json:"turn_count"`
	EscalationReason    EscalationReason `json:"escalation_reason,omitempty"`
}

// Completed reports whether stepID was advanced past.
func (s *State) Completed(stepID int) bool {
	for _, id := range s.CompletedSteps {
		if id == stepID {
			return true
		}
	}
	return false
}

// Skipped reports whether stepID was skipped by a context rule.
func (s *State) Skipped(stepID int) bool {
	for _, id := range s.SkippedSteps {
		if id == stepID {
			return true
		}
	}
	return false
}

// Turn is what the engine asks the conversation layer to do next.
type Turn struct {
	Phase            Phase
	Instruction      string
	WaitTime         int
	EscalationReason EscalationReason
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxTurns overrides the loop-safety ceiling. The default is derived
// from scenario length so long procedures get proportional headroom.
func WithMaxTurns(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxTurns = max
		}
	}
}

// WithMaxFailures sets the consecutive-failure escalation limit used
// when the scenario does not declare its own.
func WithMaxFailures(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxFailures = max
		}
	}
}

// Engine executes one scenario as a stateful, branching, skippable,
// escalation-aware sequence of steps. It never interprets language: the
// caller supplies a pre-classified outcome per turn, which keeps every
// transition deterministic and unit-testable without a model.
type Engine struct {
	sc          *scenario.Scenario
	ctxFields   map[string]string
	state       *State
	maxTurns    int
	maxFailures int
	logger      *log.Logger
}

// New creates an engine for a fresh conversation.
func New(sc *scenario.Scenario, ctxFields map[string]string, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		sc:        sc,
		ctxFields: ctxFields,
		state: &State{
			ScenarioID: sc.ID,
			Phase:      PhaseNotStarted,
		},
		// Ceiling scales with procedure length: a few exchanges per
		// step plus slack for help requests and re-prompts.
		maxTurns: 3*len(sc.Steps) + 4,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resume re-attaches an engine to persisted state, e.g. between turns of
// a conversation handled across requests.
func Resume(sc *scenario.Scenario, ctxFields map[string]string, state *State, logger *log.Logger, opts ...Option) (*Engine, error) {
	if state.ScenarioID != sc.ID {
		return nil, fmt.Errorf("state belongs to scenario %q, not %q", state.ScenarioID, sc.ID)
	}
	e := New(sc, ctxFields, logger, opts...)
	e.state = state
	return e, nil
}

// State exposes the engine's record for persistence.
func (e *Engine) State() *State {
	return e.state
}

// Start positions the engine on the scenario's first non-skipped step
// and emits its instruction.
func (e *Engine) Start() (*Turn, error) {
	if e.state.Phase != PhaseNotStarted {
		return nil, fmt.Errorf("engine already started (phase %s)", e.state.Phase)
	}

	step := e.firstEligible()
	if step == nil {
		// Context already answered every step; nothing left to try.
		return e.escalate(ReasonTroubleshootingExhausted), nil
	}

	e.state.Phase = PhaseAwaitingStep
	e.state.CurrentStep = step.StepID
	e.logger.Printf("[ENGINE] %s started at step %d", e.sc.ID, step.StepID)
	return e.emit(step), nil
}

// Advance consumes one pre-classified customer reply and transitions the
// engine. Every call increments the loop-safety counter; crossing the
// ceiling forces escalation regardless of classification.
func (e *Engine) Advance(cls *classify.Classification) (*Turn, error) {
	if e.state.Phase != PhaseAwaitingStep {
		return nil, fmt.Errorf("cannot advance in phase %s", e.state.Phase)
	}

	e.state.TurnCount++
	if e.state.TurnCount > e.maxTurns {
		e.logger.Printf("[ENGINE] %s turn ceiling %d exceeded", e.sc.ID, e.maxTurns)
		return e.escalate(ReasonTurnLimitExceeded), nil
	}

	step := e.sc.StepByID(e.state.CurrentStep)
	if step == nil {
		return nil, fmt.Errorf("current step %d not found in scenario %s", e.state.CurrentStep, e.sc.ID)
	}

	switch cls.Outcome {
	case classify.OutcomeResolved:
		// The current step is not marked complete: resolution
		// happened mid-step.
		e.state.Phase = PhaseResolved
		e.logger.Printf("[ENGINE] %s resolved at step %d", e.sc.ID, step.StepID)
		return &Turn{Phase: PhaseResolved}, nil

	case classify.OutcomeWantsEscalation:
		return e.escalate(ReasonCustomerRequested), nil

	case classify.OutcomeNeedsHelp:
		help := step.HelpText
		if help == "" {
			help = HelpFallback
		}
		return &Turn{Phase: PhaseAwaitingStep, Instruction: help, WaitTime: step.WaitTime}, nil

	case classify.OutcomeStepSuccess:
		e.state.ConsecutiveFailures = 0
		return e.branch(step, cls.Detail)

	case classify.OutcomeStepFailure:
		e.state.ConsecutiveFailures++
		limit := e.sc.Escalation.MaxFailures
		if limit == 0 {
			limit = e.maxFailures
		}
		if limit > 0 && e.state.ConsecutiveFailures >= limit {
			return e.escalate(ReasonTroubleshootingExhausted), nil
		}
		if e.sc.NextAfter(step.StepID) == nil && !e.hasBranch(step, cls.Detail) {
			return e.escalate(ReasonTroubleshootingExhausted), nil
		}
		return e.branch(step, cls.Detail)

	case classify.OutcomeUnclear:
		// Re-emit the instruction verbatim; still counts toward the
		// turn ceiling.
		return e.emit(step), nil

	default:
		return e.emit(step), nil
	}
}

// branch evaluates the step's outcome rules in declared order and moves
// the engine to the resulting step.
func (e *Engine) branch(step *scenario.Step, detail string) (*Turn, error) {
	var next *scenario.Step

	matched := false
	for _, rule := range step.ExpectedOutcomes {
		if !rule.Matches(detail) {
			continue
		}
		matched = true

		switch scenario.ActionType(rule.Action) {
		case scenario.ActionNextStep:
			next = e.nextEligible(step.StepID)
		case scenario.ActionGotoStep:
			next = e.sc.FindStep(rule.Target)
		case scenario.ActionCheckPower:
			next = e.sc.FindStep(scenario.CheckPowerStepID)
		case scenario.ActionEscalate:
			e.complete(step.StepID)
			reason := ReasonTroubleshootingExhausted
			if rule.Reason != "" {
				reason = EscalationReason(rule.Reason)
			}
			return e.escalate(reason), nil
		}
		break
	}
	if !matched {
		// Implicit fall-through to the next step in order.
		next = e.nextEligible(step.StepID)
	}

	e.complete(step.StepID)

	if next == nil {
		// Ran out of steps without an explicit resolution.
		return e.escalate(ReasonTroubleshootingExhausted), nil
	}

	e.state.CurrentStep = next.StepID
	e.logger.Printf("[ENGINE] %s advanced to step %d", e.sc.ID, next.StepID)
	return e.emit(next), nil
}

// hasBranch reports whether any outcome rule would redirect the failure
// somewhere other than plain fall-through.
func (e *Engine) hasBranch(step *scenario.Step, detail string) bool {
	for _, rule := range step.ExpectedOutcomes {
		if rule.Matches(detail) {
			return true
		}
	}
	return false
}

// firstEligible returns the first step whose skip rule is not satisfied,
// recording every step it skips on the way.
func (e *Engine) firstEligible() *scenario.Step {
	for i := range e.sc.Steps {
		step := &e.sc.Steps[i]
		if e.shouldSkip(step) {
			continue
		}
		return step
	}
	return nil
}

// nextEligible returns the next non-skipped step after stepID.
func (e *Engine) nextEligible(stepID int) *scenario.Step {
	for next := e.sc.NextAfter(stepID); next != nil; next = e.sc.NextAfter(next.StepID) {
		if e.shouldSkip(next) {
			continue
		}
		return next
	}
	return nil
}

func (e *Engine) shouldSkip(step *scenario.Step) bool {
	if step.SkipIf == nil || !step.SkipIf.Satisfied(e.ctxFields) {
		return false
	}
	if !e.state.Skipped(step.StepID) {
		e.state.SkippedSteps = append(e.state.SkippedSteps, step.StepID)
		e.logger.Printf("[ENGINE] %s skipped step %d (%s known)", e.sc.ID, step.StepID, step.SkipIf.Field)
	}
	return true
}

func (e *Engine) complete(stepID int) {
	if !e.state.Completed(stepID) {
		e.state.CompletedSteps = append(e.state.CompletedSteps, stepID)
	}
}

func (e *Engine) escalate(reason EscalationReason) *Turn {
	e.state.Phase = PhaseEscalated
	e.state.EscalationReason = reason
	e.logger.Printf("[ENGINE] %s escalated: %s", e.sc.ID, reason)
	return &Turn{Phase: PhaseEscalated, EscalationReason: reason}
}

func (e *Engine) emit(step *scenario.Step) *Turn {
	return &Turn{
		Phase:       PhaseAwaitingStep,
		Instruction: step.Instruction,
		WaitTime:    step.WaitTime,
	}
}
