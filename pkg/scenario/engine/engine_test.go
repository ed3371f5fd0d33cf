package engine

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-helpdesk-be/pkg/classify"
	"ai-helpdesk-be/pkg/scenario"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func routerScenario() *scenario.Scenario {
	return &scenario.Scenario{
		ID:          "internet_no_connection",
		Title:       "No internet connection",
		ProblemType: "internet",
		Keywords:    []string{"internet", "router", "offline"},
		Steps: []scenario.Step{
			{
				StepID:      1,
				Instruction: "Look at your router. What color are the lights?",
				HelpText:    "The router is the box your internet cable plugs into.",
				SkipIf:      &scenario.SkipRule{Field: "router_lights", In: []string{"green", "red", "off"}},
				ExpectedOutcomes: []scenario.OutcomeRule{
					{Pattern: "off", Action: "check_power"},
					{Pattern: "", Action: "next_step"},
				},
			},
			{
				StepID:      2,
				Instruction: "Unplug the router, wait 30 seconds, plug it back in.",
				WaitTime:    120,
			},
			{
				StepID:      3,
				ID:          "check_power",
				Instruction: "Check that the power outlet works with another device.",
			},
			{
				StepID:      4,
				Instruction: "Connect a cable directly from the router to your computer.",
				ExpectedOutcomes: []scenario.OutcomeRule{
					{Pattern: "still no connection", Action: "escalate", Reason: "troubleshooting_exhausted"},
				},
			},
		},
		Escalation: scenario.Escalation{
			MaxFailures: 3,
			Ticket:      scenario.TicketMeta{Category: "internet", Priority: "high", Team: "network"},
		},
	}
}

func cls(outcome classify.Outcome, detail string) *classify.Classification {
	return &classify.Classification{Outcome: outcome, Detail: detail, Confidence: 0.9}
}

func TestEngine_StartEmitsFirstStep(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())

	turn, err := eng.Start()
	assert.NoError(t, err)
	assert.Equal(t, PhaseAwaitingStep, turn.Phase)
	assert.Contains(t, turn.Instruction, "router")
	assert.Equal(t, 1, eng.State().CurrentStep)
}

func TestEngine_StartAppliesSkipRules(t *testing.T) {
	eng := New(routerScenario(), map[string]string{"router_lights": "Green"}, testLogger())

	turn, err := eng.Start()
	assert.NoError(t, err)
	assert.Equal(t, 2, eng.State().CurrentStep)
	assert.Contains(t, turn.Instruction, "Unplug")
	assert.Equal(t, []int{1}, eng.State().SkippedSteps)
}

func TestEngine_ResolvedDoesNotCompleteCurrentStep(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	// Step 1 succeeds, lights are green.
	turn, err := eng.Advance(cls(classify.OutcomeStepSuccess, "lights are green"))
	assert.NoError(t, err)
	assert.Equal(t, 2, eng.State().CurrentStep)
	assert.Equal(t, PhaseAwaitingStep, turn.Phase)

	// Mid step 2 the customer reports it works again.
	turn, err = eng.Advance(cls(classify.OutcomeResolved, "it works now"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseResolved, turn.Phase)
	assert.Equal(t, []int{1}, eng.State().CompletedSteps)
}

func TestEngine_CheckPowerBranch(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeStepSuccess, "all lights are off"))
	assert.NoError(t, err)
	assert.Equal(t, 3, eng.State().CurrentStep)
	assert.Contains(t, turn.Instruction, "power outlet")
}

func TestEngine_WantsEscalationIsImmediate(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeWantsEscalation, "send a technician"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseEscalated, turn.Phase)
	assert.Equal(t, ReasonCustomerRequested, turn.EscalationReason)
	assert.Empty(t, eng.State().CompletedSteps)
}

func TestEngine_ConsecutiveFailuresEscalate(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeStepFailure, "nothing changed"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseAwaitingStep, turn.Phase)

	turn, err = eng.Advance(cls(classify.OutcomeStepFailure, "still nothing"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseAwaitingStep, turn.Phase)

	turn, err = eng.Advance(cls(classify.OutcomeStepFailure, "no difference"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseEscalated, turn.Phase)
	assert.Equal(t, ReasonTroubleshootingExhausted, turn.EscalationReason)
}

func TestEngine_SuccessResetsFailureStreak(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	_, err = eng.Advance(cls(classify.OutcomeStepFailure, "no change"))
	assert.NoError(t, err)
	assert.Equal(t, 1, eng.State().ConsecutiveFailures)

	_, err = eng.Advance(cls(classify.OutcomeStepSuccess, "done, rebooted"))
	assert.NoError(t, err)
	assert.Equal(t, 0, eng.State().ConsecutiveFailures)
}

func TestEngine_NeedsHelpRepeatsWithHelpText(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeNeedsHelp, "what is a router"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseAwaitingStep, turn.Phase)
	assert.Contains(t, turn.Instruction, "box your internet cable")
	assert.Equal(t, 1, eng.State().CurrentStep)
}

func TestEngine_NeedsHelpWithoutHelpTextUsesFallback(t *testing.T) {
	sc := routerScenario()
	eng := New(sc, nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)
	_, err = eng.Advance(cls(classify.OutcomeStepSuccess, "lights green"))
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeNeedsHelp, "how"))
	assert.NoError(t, err)
	assert.Equal(t, HelpFallback, turn.Instruction)
}

func TestEngine_UnclearRepeatsInstructionVerbatim(t *testing.T) {
	sc := routerScenario()
	eng := New(sc, nil, testLogger())
	first, err := eng.Start()
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeUnclear, ""))
	assert.NoError(t, err)
	assert.Equal(t, first.Instruction, turn.Instruction)
	assert.Equal(t, 1, eng.State().TurnCount)
}

func TestEngine_TurnCeilingForcesEscalation(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger(), WithMaxTurns(5))
	_, err := eng.Start()
	assert.NoError(t, err)

	var turn *Turn
	for i := 0; i < 6; i++ {
		turn, err = eng.Advance(cls(classify.OutcomeUnclear, ""))
		assert.NoError(t, err)
	}
	assert.Equal(t, PhaseEscalated, turn.Phase)
	assert.Equal(t, ReasonTurnLimitExceeded, turn.EscalationReason)
}

func TestEngine_ExplicitEscalateRule(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	_, err = eng.Advance(cls(classify.OutcomeStepSuccess, "lights green"))
	assert.NoError(t, err)
	_, err = eng.Advance(cls(classify.OutcomeStepSuccess, "rebooted"))
	assert.NoError(t, err)
	_, err = eng.Advance(cls(classify.OutcomeStepSuccess, "outlet works"))
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeStepFailure, "still no connection with the cable"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseEscalated, turn.Phase)
	assert.Equal(t, ReasonTroubleshootingExhausted, turn.EscalationReason)
	assert.Contains(t, eng.State().CompletedSteps, 4)
}

func TestEngine_ExhaustedAfterLastStep(t *testing.T) {
	eng := New(routerScenario(), nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)

	for _, detail := range []string{"lights green", "rebooted", "outlet works"} {
		_, err = eng.Advance(cls(classify.OutcomeStepSuccess, detail))
		assert.NoError(t, err)
	}

	turn, err := eng.Advance(cls(classify.OutcomeStepSuccess, "cable is connected"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseEscalated, turn.Phase)
	assert.Equal(t, ReasonTroubleshootingExhausted, turn.EscalationReason)
}

func TestEngine_AllStepsSkippedEscalates(t *testing.T) {
	sc := &scenario.Scenario{
		ID:          "tiny",
		Title:       "Tiny",
		ProblemType: "internet",
		Steps: []scenario.Step{
			{StepID: 1, Instruction: "Check lights", SkipIf: &scenario.SkipRule{Field: "router_lights", In: []string{"green"}}},
		},
	}
	eng := New(sc, map[string]string{"router_lights": "green"}, testLogger())

	turn, err := eng.Start()
	assert.NoError(t, err)
	assert.Equal(t, PhaseEscalated, turn.Phase)
	assert.Equal(t, ReasonTroubleshootingExhausted, turn.EscalationReason)
}

func TestEngine_ResumeRestoresPosition(t *testing.T) {
	sc := routerScenario()
	eng := New(sc, nil, testLogger())
	_, err := eng.Start()
	assert.NoError(t, err)
	_, err = eng.Advance(cls(classify.OutcomeStepSuccess, "lights green"))
	assert.NoError(t, err)

	restored, err := Resume(sc, nil, eng.State(), testLogger())
	assert.NoError(t, err)

	turn, err := restored.Advance(cls(classify.OutcomeStepSuccess, "rebooted, still down"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseAwaitingStep, turn.Phase)
	assert.Equal(t, 3, restored.State().CurrentStep)
}

func TestEngine_ResumeRejectsForeignState(t *testing.T) {
	sc := routerScenario()
	_, err := Resume(sc, nil, &State{ScenarioID: "other"}, testLogger())
	assert.Error(t, err)
}

func TestEngine_GlobalFailureLimitWhenScenarioHasNone(t *testing.T) {
	sc := routerScenario()
	sc.Escalation.MaxFailures = 0

	eng := New(sc, nil, testLogger(), WithMaxFailures(2))
	_, err := eng.Start()
	assert.NoError(t, err)

	turn, err := eng.Advance(cls(classify.OutcomeStepFailure, "nothing changed"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseAwaitingStep, turn.Phase)

	turn, err = eng.Advance(cls(classify.OutcomeStepFailure, "still nothing"))
	assert.NoError(t, err)
	assert.Equal(t, PhaseEscalated, turn.Phase)
	assert.Equal(t, ReasonTroubleshootingExhausted, turn.EscalationReason)
}
