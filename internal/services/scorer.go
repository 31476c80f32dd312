package services

import (
	"math"
	"strings"
)

// Match is one value proposed by a field strategy. Confidence is the raw confidence of
// the method that produced it, higher for more specific matches.
type Match struct {
	Value      string
	Values     []string
	Key        string
	Confidence float64
}

func (m Match) empty() bool {
	return strings.TrimSpace(m.Value) == "" && len(m.Values) == 0
}

func (m Match) key() string {
	if m.Key != "" {
		return m.Key
	}
	if len(m.Values) > 0 {
		return strings.ToLower(strings.Join(m.Values, "\x00"))
	}
	return strings.ToLower(strings.TrimSpace(m.Value))
}

// ScoredField is the value retained for a field and its normalized confidence.
type ScoredField struct {
	Value      string
	Values     []string
	Confidence float64
	Ambiguous  bool
}

type ConfidenceScorer struct {
	// AmbiguityFactor scales the confidence when matches disagree.
	AmbiguityFactor float64
	// CorroborationBonus is added for each further match agreeing with the first.
	CorroborationBonus float64
}

func NewConfidenceScorer() *ConfidenceScorer {
	return &ConfidenceScorer{
		AmbiguityFactor:    0.5,
		CorroborationBonus: 0.05,
	}
}

// Normalize clamps a raw confidence into [0,1].
func (s *ConfidenceScorer) Normalize(raw float64) float64 {
	if math.IsNaN(raw) || raw < 0 {
		return 0
	}
	if raw > 1 {
		return 1
	}
	return raw
}

type matchGroup struct {
	first int
	best  int
	count int
}

// Score picks a value out of the matches of one field. A single distinct value keeps its
// first match. Conflicting values keep the most specific match at a reduced confidence.
func (s *ConfidenceScorer) Score(matches []Match) (ScoredField, bool) {
	var (
		order  []string
		groups = make(map[string]*matchGroup)
	)
	for i, m := range matches {
		if m.empty() {
			continue
		}
		k := m.key()
		g, ok := groups[k]
		if !ok {
			g = &matchGroup{first: i, best: i}
			groups[k] = g
			order = append(order, k)
		}
		g.count++
		if s.Normalize(m.Confidence) > s.Normalize(matches[g.best].Confidence) {
			g.best = i
		}
	}

	if len(order) == 0 {
		return ScoredField{}, false
	}

	if len(order) == 1 {
		g := groups[order[0]]
		first := matches[g.first]
		confidence := s.Normalize(matches[g.best].Confidence) + float64(g.count-1)*s.CorroborationBonus
		return ScoredField{
			Value:      strings.TrimSpace(first.Value),
			Values:     first.Values,
			Confidence: s.Normalize(confidence),
		}, true
	}

	winner := groups[order[0]]
	for _, k := range order[1:] {
		g := groups[k]
		if s.Normalize(matches[g.best].Confidence) > s.Normalize(matches[winner.best].Confidence) {
			winner = g
		}
	}
	best := matches[winner.best]
	return ScoredField{
		Value:      strings.TrimSpace(best.Value),
		Values:     best.Values,
		Confidence: s.Normalize(s.Normalize(best.Confidence) * s.AmbiguityFactor),
		Ambiguous:  true,
	}, true
}
