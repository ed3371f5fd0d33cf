package keyword

import (
	"strings"
	"unicode"
)

const (
	perTokenWeight = 0.1
	techTermBoost  = 0.15
)

// stopWords covers the supported languages (English and Lithuanian).
var stopWords = map[string]struct{}{
	// English
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "if": {}, "in": {}, "is": {}, "it": {},
	"my": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "was": {}, "with": {},
	// Lithuanian
	"ar": {}, "bet": {}, "buvo": {}, "iki": {}, "ir": {}, "kad": {},
	"kai": {}, "kaip": {}, "kas": {}, "mano": {}, "nuo": {}, "o": {},
	"per": {}, "po": {}, "prie": {}, "su": {}, "tai": {}, "tik": {},
	"yra": {},
}

// techTerms is the curated set that earns the extra boost. Localized
// equivalents score the same as their English forms.
var techTerms = map[string]struct{}{
	"router": {}, "wan": {}, "wifi": {}, "dns": {}, "ip": {},
	"decoder": {}, "signal": {}, "modem": {}, "lan": {}, "ethernet": {},
	// Lithuanian equivalents
	"maršrutizatorius": {}, "maršrutizatoriaus": {},
	"dekoderis": {}, "dekoderio": {},
	"signalas": {}, "signalo": {},
	"internetas": {}, "interneto": {},
}

// Scorer computes a bounded keyword-overlap relevance contribution. It
// is a cheap, explainable heuristic rather than TF-IDF: the matched
// tokens are surfaced to the human agent alongside the score.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns a relevance contribution in [0,1] plus the tokens common
// to both strings. Base score is 0.1 per shared token; shared technical
// terms add 0.15 each; the total is capped at 1.0.
func (s *Scorer) Score(query, documentText string) (float64, []string) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0, nil
	}

	docTokens := make(map[string]struct{})
	for _, tok := range tokenize(documentText) {
		docTokens[tok] = struct{}{}
	}

	seen := make(map[string]struct{})
	var matched []string
	score := 0.0

	for _, tok := range queryTokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}

		if _, ok := docTokens[tok]; !ok {
			continue
		}
		matched = append(matched, tok)
		score += perTokenWeight
		if _, tech := techTerms[tok]; tech {
			score += techTermBoost
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, matched
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
