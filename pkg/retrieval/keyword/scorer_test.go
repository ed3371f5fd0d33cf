package keyword

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreNoOverlap(t *testing.T) {
	s := NewScorer()
	score, matched := s.Score("television picture frozen", "invoice payment overdue")
	assert.Equal(t, 0.0, score)
	assert.Empty(t, matched)
}

func TestScorePlainOverlap(t *testing.T) {
	s := NewScorer()
	score, matched := s.Score("slow connection evening", "connection speed drops in the evening hours")
	// "connection" and "evening": 2 * 0.1, no technical terms.
	assert.InDelta(t, 0.2, score, 1e-9)
	assert.ElementsMatch(t, []string{"connection", "evening"}, matched)
}

func TestScoreTechnicalTermBoost(t *testing.T) {
	s := NewScorer()
	score, matched := s.Score("router wan light red", "check the wan light on your router")
	// "router", "wan", "light" common; router and wan are technical.
	assert.InDelta(t, 3*0.1+2*0.15, score, 1e-9)
	assert.Contains(t, matched, "router")
	assert.Contains(t, matched, "wan")
}

func TestScoreLithuanianTerms(t *testing.T) {
	s := NewScorer()
	score, matched := s.Score("neveikia internetas", "patikrinkite ar internetas veikia kitame įrenginyje")
	assert.InDelta(t, 0.1+0.15, score, 1e-9)
	assert.Equal(t, []string{"internetas"}, matched)
}

func TestScoreStopWordsIgnored(t *testing.T) {
	s := NewScorer()
	score, matched := s.Score("the and is", "the and is")
	assert.Equal(t, 0.0, score)
	assert.Empty(t, matched)
}

func TestScoreCappedAtOne(t *testing.T) {
	s := NewScorer()
	text := "router wan wifi dns ip decoder signal modem lan ethernet cable port"
	score, _ := s.Score(text, text)
	assert.Equal(t, 1.0, score)
}

func TestScoreRepeatedTokensCountOnce(t *testing.T) {
	s := NewScorer()
	score, matched := s.Score(strings.Repeat("signal ", 5), "weak signal reported")
	assert.InDelta(t, 0.1+0.15, score, 1e-9)
	assert.Equal(t, []string{"signal"}, matched)
}
