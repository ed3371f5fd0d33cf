package scenario

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-helpdesk-be/pkg/retrieval"
	"ai-helpdesk-be/pkg/store"
)

type countingSearcher struct {
	calls   int
	results []retrieval.Result
	err     error
}

func (c *countingSearcher) Retrieve(query string, opts retrieval.Options) ([]retrieval.Result, error) {
	c.calls++
	return c.results, c.err
}

func selectorFixture(searcher Searcher) *Selector {
	scenarios := map[string]*Scenario{
		"internet_no_connection": {ID: "internet_no_connection"},
		"internet_intermittent":  {ID: "internet_intermittent"},
		"general_default":        {ID: "general_default"},
	}
	rules := []DirectRule{
		{Field: "symptom", Contains: []string{"no internet", "visiškai neveikia"}, ScenarioID: "internet_no_connection"},
	}
	defaults := map[string]string{"internet": "internet_no_connection"}
	return NewSelector(rules, searcher, scenarios, defaults, "general_default", log.New(io.Discard, "", 0))
}

func TestSelector_DirectRuleSkipsRetriever(t *testing.T) {
	searcher := &countingSearcher{
		results: []retrieval.Result{{Metadata: map[string]string{"scenario_id": "internet_intermittent"}, HybridScore: 0.9}},
	}
	sel := selectorFixture(searcher)

	id := sel.Select("internet", map[string]string{"symptom": "I have no internet at all"}, "no internet at all")
	assert.Equal(t, "internet_no_connection", id)
	assert.Equal(t, 0, searcher.calls)
}

func TestSelector_RetrievalFallback(t *testing.T) {
	searcher := &countingSearcher{
		results: []retrieval.Result{{
			Document:    store.Document{Text: "Intermittent connection drops"},
			Metadata:    map[string]string{"scenario_id": "internet_intermittent"},
			HybridScore: 0.82,
		}},
	}
	sel := selectorFixture(searcher)

	id := sel.Select("internet", nil, "internetas nutrūkinėja kas kelias minutes")
	assert.Equal(t, "internet_intermittent", id)
	assert.Equal(t, 1, searcher.calls)
}

func TestSelector_RetrievalUnknownScenarioFallsThrough(t *testing.T) {
	searcher := &countingSearcher{
		results: []retrieval.Result{{Metadata: map[string]string{"scenario_id": "deleted_scenario"}, HybridScore: 0.9}},
	}
	sel := selectorFixture(searcher)

	id := sel.Select("internet", nil, "ryšys dingsta")
	assert.Equal(t, "internet_no_connection", id)
}

func TestSelector_RetrievalErrorFallsThrough(t *testing.T) {
	searcher := &countingSearcher{err: errors.New("index unavailable")}
	sel := selectorFixture(searcher)

	id := sel.Select("internet", nil, "connection drops")
	assert.Equal(t, "internet_no_connection", id)
}

func TestSelector_EmptyDescriptionSkipsRetriever(t *testing.T) {
	searcher := &countingSearcher{}
	sel := selectorFixture(searcher)

	id := sel.Select("internet", nil, "   ")
	assert.Equal(t, "internet_no_connection", id)
	assert.Equal(t, 0, searcher.calls)
}

func TestSelector_GlobalFallback(t *testing.T) {
	sel := selectorFixture(&countingSearcher{})

	id := sel.Select("billing", nil, "")
	assert.Equal(t, "general_default", id)
}

func preconditionFixture(searcher Searcher) *Selector {
	scenarios := map[string]*Scenario{
		"internet_no_connection": {
			ID:            "internet_no_connection",
			Preconditions: map[string][]string{"connection_type": {"fiber", "dsl", "cable"}},
		},
		"internet_intermittent": {ID: "internet_intermittent"},
		"general_default":       {ID: "general_default"},
	}
	rules := []DirectRule{
		{Field: "symptom", Contains: []string{"no internet", "visiškai neveikia"}, ScenarioID: "internet_no_connection"},
		{Field: "connection_pattern", Contains: []string{"intermittent", "trūkinėja"}, ScenarioID: "internet_intermittent"},
	}
	defaults := map[string]string{"internet": "internet_no_connection"}
	return NewSelector(rules, searcher, scenarios, defaults, "general_default", log.New(io.Discard, "", 0))
}

func TestSelector_PreconditionConflictSkipsDirectRule(t *testing.T) {
	searcher := &countingSearcher{}
	sel := preconditionFixture(searcher)

	// The rule matches, but the customer is on mobile broadband and the
	// scenario only applies to fixed lines. The static default names the
	// same scenario, so selection ends at the global fallback.
	got := sel.Select("internet", map[string]string{
		"symptom":         "no internet at all",
		"connection_type": "mobile",
	}, "")

	assert.Equal(t, "general_default", got)
	assert.Equal(t, 0, searcher.calls)
}

func TestSelector_PreconditionMatchIsCaseInsensitive(t *testing.T) {
	sel := preconditionFixture(nil)

	got := sel.Select("internet", map[string]string{
		"symptom":         "no internet",
		"connection_type": " Fiber ",
	}, "")

	assert.Equal(t, "internet_no_connection", got)
}

func TestSelector_PreconditionConflictSkipsRetrievalHit(t *testing.T) {
	searcher := &countingSearcher{results: []retrieval.Result{{
		HybridScore: 0.9,
		Metadata:    map[string]string{"scenario_id": "internet_no_connection"},
	}}}
	sel := preconditionFixture(searcher)

	got := sel.Select("internet", map[string]string{
		"connection_type": "mobile",
	}, "interneto nėra namuose")

	assert.Equal(t, "general_default", got)
	assert.Equal(t, 1, searcher.calls)
}

func TestSelector_ConnectionPatternRuleSkipsRetriever(t *testing.T) {
	searcher := &countingSearcher{}
	sel := preconditionFixture(searcher)

	got := sel.Select("internet", map[string]string{
		"connection_pattern": "ryšys trūkinėja vakarais",
	}, "internetas kartais dingsta")

	assert.Equal(t, "internet_intermittent", got)
	assert.Equal(t, 0, searcher.calls)
}

func TestScenario_PreconditionsMetIgnoresMissingFields(t *testing.T) {
	sc := &Scenario{
		ID:            "internet_no_connection",
		Preconditions: map[string][]string{"connection_type": {"fiber", "dsl"}},
	}

	assert.True(t, sc.PreconditionsMet(nil))
	assert.True(t, sc.PreconditionsMet(map[string]string{"router_lights": "off"}))
	assert.True(t, sc.PreconditionsMet(map[string]string{"connection_type": "dsl"}))
	assert.False(t, sc.PreconditionsMet(map[string]string{"connection_type": "mobile"}))
}
