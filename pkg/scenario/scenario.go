package scenario

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionType is the closed set of branch actions a step outcome rule may
// take. Rules are parsed into this enum at load time so a typo in a
// scenario file fails startup instead of becoming a silent no-op.
type ActionType string

const (
	ActionNextStep   ActionType = "next_step"
	ActionGotoStep   ActionType = "goto_step"
	ActionEscalate   ActionType = "escalate"
	ActionCheckPower ActionType = "check_power"
)

// CheckPowerStepID is the symbolic step id the check_power action jumps
// to. A scenario using the action must define a step with this id.
const CheckPowerStepID = "check_power"

// OutcomeRule maps a reply-detail pattern to a branch action. An empty
// pattern matches any detail.
type OutcomeRule struct {
	Pattern string `yaml:"pattern,omitempty"`
	Action  string `yaml:"action"`
	Target  string `yaml:"target,omitempty"`
	Reason  string `yaml:"reason,omitempty"`
}

// Matches reports whether the rule applies to the classified detail.
func (r OutcomeRule) Matches(detail string) bool {
	if r.Pattern == "" {
		return true
	}
	return strings.Contains(strings.ToLower(detail), strings.ToLower(r.Pattern))
}

// SkipRule skips a step when a context field already answers it.
type SkipRule struct {
	Field string   `yaml:"field"`
	In    []string `yaml:"in"`
}

// Satisfied reports whether the context makes the step redundant.
func (r SkipRule) Satisfied(ctxFields map[string]string) bool {
	value, ok := ctxFields[r.Field]
	if !ok {
		return false
	}
	value = strings.ToLower(strings.TrimSpace(value))
	for _, accepted := range r.In {
		if value == strings.ToLower(strings.TrimSpace(accepted)) {
			return true
		}
	}
	return false
}

// Step is one instruction/question unit within a scenario. StepID is the
// ordering key; ID is an optional symbolic name used as a jump target.
type Step struct {
	StepID           int           `yaml:"step_id"`
	ID               string        `yaml:"id,omitempty"`
	Instruction      string        `yaml:"instruction"`
	HelpText         string        `yaml:"help_text,omitempty"`
	WaitTime         int           `yaml:"wait_time,omitempty"`
	ExpectedOutcomes []OutcomeRule `yaml:"expected_outcomes,omitempty"`
	SkipIf           *SkipRule     `yaml:"skip_if,omitempty"`
}

// TicketMeta is attached to tickets created when the scenario escalates.
type TicketMeta struct {
	Category string `yaml:"category,omitempty"`
	Priority string `yaml:"priority,omitempty"`
	Team     string `yaml:"team,omitempty"`
}

// Escalation configures when a running scenario gives up.
type Escalation struct {
	// MaxFailures is the number of consecutive step failures that
	// triggers escalation. Zero means only the last step escalates.
	MaxFailures int        `yaml:"max_failures,omitempty"`
	Ticket      TicketMeta `yaml:"ticket,omitempty"`
}

// Scenario is a named procedure for resolving one class of problem.
// Loaded once at startup and treated as read-only reference data, so it
// is safe to share across concurrent conversations.
type Scenario struct {
	ID            string              `yaml:"id"`
	Title         string              `yaml:"title"`
	ProblemType   string              `yaml:"problem_type"`
	Keywords      []string            `yaml:"keywords,omitempty"`
	Preconditions map[string][]string `yaml:"preconditions,omitempty"`
	Steps         []Step              `yaml:"steps"`
	Escalation    Escalation          `yaml:"escalation,omitempty"`
}

// Validate checks structural integrity. A scenario that starts executing
// must be structurally valid, so any violation aborts startup.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scenario id is required")
	}
	if s.ProblemType == "" {
		return fmt.Errorf("scenario %s: problem_type is required", s.ID)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %s: at least one step is required", s.ID)
	}

	seenStepIDs := make(map[int]struct{})
	seenSymbolic := make(map[string]struct{})
	lastStepID := 0
	for _, step := range s.Steps {
		if step.StepID <= lastStepID {
			return fmt.Errorf("scenario %s: step ids must be unique and ascending, got %d after %d", s.ID, step.StepID, lastStepID)
		}
		lastStepID = step.StepID
		seenStepIDs[step.StepID] = struct{}{}

		if step.Instruction == "" {
			return fmt.Errorf("scenario %s: step %d has no instruction", s.ID, step.StepID)
		}
		if step.ID != "" {
			if _, dup := seenSymbolic[step.ID]; dup {
				return fmt.Errorf("scenario %s: duplicate symbolic step id %q", s.ID, step.ID)
			}
			seenSymbolic[step.ID] = struct{}{}
		}
	}

	for _, step := range s.Steps {
		for _, rule := range step.ExpectedOutcomes {
			switch ActionType(rule.Action) {
			case ActionNextStep:
			case ActionEscalate:
			case ActionGotoStep:
				if rule.Target == "" {
					return fmt.Errorf("scenario %s: step %d goto_step without target", s.ID, step.StepID)
				}
				if s.FindStep(rule.Target) == nil {
					return fmt.Errorf("scenario %s: step %d goto_step target %q not found", s.ID, step.StepID, rule.Target)
				}
			case ActionCheckPower:
				if s.FindStep(CheckPowerStepID) == nil {
					return fmt.Errorf("scenario %s: step %d uses check_power but no %q step exists", s.ID, step.StepID, CheckPowerStepID)
				}
			default:
				return fmt.Errorf("scenario %s: step %d has unknown action %q", s.ID, step.StepID, rule.Action)
			}
		}
	}

	return nil
}

// FindStep resolves a jump reference: either a symbolic step id or a
// numeric step_id.
func (s *Scenario) FindStep(ref string) *Step {
	for i := range s.Steps {
		if s.Steps[i].ID != "" && s.Steps[i].ID == ref {
			return &s.Steps[i]
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		return s.StepByID(n)
	}
	return nil
}

// StepByID returns the step with the given numeric step_id, or nil.
func (s *Scenario) StepByID(stepID int) *Step {
	for i := range s.Steps {
		if s.Steps[i].StepID == stepID {
			return &s.Steps[i]
		}
	}
	return nil
}

// NextAfter returns the step following stepID in ascending order, or nil
// when stepID is the last step.
func (s *Scenario) NextAfter(stepID int) *Step {
	for i := range s.Steps {
		if s.Steps[i].StepID > stepID {
			return &s.Steps[i]
		}
	}
	return nil
}

// LastStepID returns the highest step_id in the scenario.
func (s *Scenario) LastStepID() int {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].StepID
}

// PreconditionsMet reports whether the known context is compatible with
// the scenario's preconditions. Only fields the customer has already
// answered are checked; a missing field never disqualifies.
func (s *Scenario) PreconditionsMet(ctxFields map[string]string) bool {
	for field, accepted := range s.Preconditions {
		value, ok := ctxFields[field]
		if !ok {
			continue
		}
		value = strings.ToLower(strings.TrimSpace(value))
		match := false
		for _, a := range accepted {
			if value == strings.ToLower(strings.TrimSpace(a)) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}

// Digest returns a short text used when indexing the scenario for
// similarity-based selection.
func (s *Scenario) Digest() string {
	parts := []string{s.Title, s.ProblemType}
	parts = append(parts, s.Keywords...)
	return strings.Join(parts, " ")
}
