package classify

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"ai-helpdesk-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	response string
	err      error
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

func newClassifier(response string, err error) *LLMClassifier {
	return NewLLMClassifier(&scriptedLLM{response: response, err: err}, log.New(io.Discard, "", 0))
}

func TestClassifyParsesWellFormedJSON(t *testing.T) {
	c := newClassifier(`{"outcome": "step_success", "detail": "lights are green", "confidence": 0.9}`, nil)

	res, err := c.Classify(context.Background(), "Check the router lights", nil, "all green")
	require.NoError(t, err)
	assert.Equal(t, OutcomeStepSuccess, res.Outcome)
	assert.Equal(t, "lights are green", res.Detail)
}

func TestClassifyExtractsJSONFromChatter(t *testing.T) {
	c := newClassifier("Sure, here is the classification:\n```json\n{\"outcome\": \"RESOLVED\", \"detail\": \"\", \"confidence\": 1.0}\n```", nil)

	res, err := c.Classify(context.Background(), "Restart the router", nil, "it works now, thanks")
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
}

func TestClassifyFallsBackOnProviderError(t *testing.T) {
	c := newClassifier("", fmt.Errorf("connection refused"))

	res, err := c.Classify(context.Background(), "Check the cable", nil, "ok")
	require.NoError(t, err, "per-turn failures must not crash the conversation")
	assert.Equal(t, OutcomeUnclear, res.Outcome)
}

func TestClassifyFallsBackOnGarbageOutput(t *testing.T) {
	for _, response := range []string{
		"I think the customer already fixed it themselves.",
		`{"outcome": "maybe_fixed"}`,
		`{"outcome": `,
	} {
		c := newClassifier(response, nil)
		res, err := c.Classify(context.Background(), "Check the cable", nil, "ok")
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnclear, res.Outcome, "response: %s", response)
	}
}

func TestOutcomeValid(t *testing.T) {
	assert.True(t, OutcomeWantsEscalation.Valid())
	assert.False(t, Outcome("escalate_now").Valid())
}
