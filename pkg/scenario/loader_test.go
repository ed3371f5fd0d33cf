package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const validScenarioYAML = `id: internet_no_connection
title: No internet connection
problem_type: internet
keywords:
  - internet
  - router
steps:
  - step_id: 1
    instruction: Look at the router lights.
    help_text: The router is the box with the blinking lights.
    skip_if:
      field: router_lights
      in: [green, red, "off"]
    expected_outcomes:
      - pattern: "off"
        action: check_power
      - pattern: ""
        action: next_step
  - step_id: 2
    instruction: Reboot the router.
    wait_time: 120
  - step_id: 3
    id: check_power
    instruction: Check the power outlet.
escalation:
  max_failures: 3
  ticket:
    category: internet
    priority: high
    team: network
`

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	assert.NoError(t, err)
}

func TestLoadFile_Valid(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "internet.yaml", validScenarioYAML)

	sc, err := LoadFile(filepath.Join(dir, "internet.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, "internet_no_connection", sc.ID)
	assert.Len(t, sc.Steps, 3)
	assert.Equal(t, 120, sc.Steps[1].WaitTime)
	assert.Equal(t, "network", sc.Escalation.Ticket.Team)

	step := sc.FindStep("check_power")
	assert.NotNil(t, step)
	assert.Equal(t, 3, step.StepID)
}

func TestLoadFile_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", "id: x\ntitle: X\nproblem_type: internet\nbogus_field: 1\nsteps:\n  - step_id: 1\n    instruction: a\n")

	_, err := LoadFile(filepath.Join(dir, "bad.yaml"))
	assert.ErrorIs(t, err, ErrScenarioMalformed)
}

func TestLoadFile_GotoTargetMustResolve(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", `id: x
title: X
problem_type: internet
steps:
  - step_id: 1
    instruction: a
    expected_outcomes:
      - pattern: "x"
        action: goto_step
        target: nowhere
`)

	_, err := LoadFile(filepath.Join(dir, "bad.yaml"))
	assert.ErrorIs(t, err, ErrScenarioMalformed)
}

func TestLoadFile_CheckPowerNeedsMatchingStep(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", `id: x
title: X
problem_type: internet
steps:
  - step_id: 1
    instruction: a
    expected_outcomes:
      - pattern: "off"
        action: check_power
`)

	_, err := LoadFile(filepath.Join(dir, "bad.yaml"))
	assert.ErrorIs(t, err, ErrScenarioMalformed)
}

func TestLoadFile_StepIDsMustAscend(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", `id: x
title: X
problem_type: internet
steps:
  - step_id: 2
    instruction: a
  - step_id: 1
    instruction: b
`)

	_, err := LoadFile(filepath.Join(dir, "bad.yaml"))
	assert.ErrorIs(t, err, ErrScenarioMalformed)
}

func TestLoadAll_RejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", validScenarioYAML)
	writeScenario(t, dir, "b.yaml", validScenarioYAML)

	_, err := LoadAll(dir)
	assert.ErrorIs(t, err, ErrScenarioMalformed)
}

func TestLoadAll_IgnoresNonYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", validScenarioYAML)
	writeScenario(t, dir, "README.md", "# notes")

	scenarios, err := LoadAll(dir)
	assert.NoError(t, err)
	assert.Len(t, scenarios, 1)
}
