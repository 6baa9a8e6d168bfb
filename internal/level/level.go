// Package level defines the two proficiency scales used across the planner.
//
// Level is the 4-step ordinal scale used for gap scoring, coverage and
// roadmaps. MatchLevel is the 5-value weighted scale used by the match scorer.
// The scales are kept apart on purpose: converting between them would change
// scoring outcomes.
package level

import "strings"

// Level is a position on the ordinal proficiency scale.
type Level int

// Ordinal scale, lowest first.
const (
	Novice Level = iota
	Practitioner
	Advanced
	Expert
)

var levelNames = [...]string{"Novice", "Practitioner", "Advanced", "Expert"}

// All returns every level in ascending order.
func All() []Level {
	return []Level{Novice, Practitioner, Advanced, Expert}
}

// Parse maps a level name to its Level. Unknown or empty names resolve to
// Novice; matching ignores case and surrounding whitespace.
func Parse(s string) Level {
	s = strings.TrimSpace(s)
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i)
		}
	}
	return Novice
}

// String returns the canonical level name.
func (l Level) String() string {
	if l < Novice || l > Expert {
		return levelNames[Novice]
	}
	return levelNames[l]
}

// StepsTo returns the number of ordinal steps from l up to target, never
// negative.
func (l Level) StepsTo(target Level) int {
	return max(0, int(target)-int(l))
}

// Next returns the level one step above l, capped at Expert.
func (l Level) Next() Level {
	if l >= Expert {
		return Expert
	}
	return l + 1
}

// Transition formats the "From→To" label used for hour tables and roadmap
// summaries.
func Transition(from, to Level) string {
	return from.String() + "→" + to.String()
}

// MatchLevel is a named position on the weighted match scale.
type MatchLevel string

// Weighted match scale.
const (
	MatchNone         MatchLevel = "None"
	MatchBeginner     MatchLevel = "Beginner"
	MatchPractitioner MatchLevel = "Practitioner"
	MatchAdvanced     MatchLevel = "Advanced"
	MatchExpert       MatchLevel = "Expert"
)

var matchWeights = map[MatchLevel]float64{
	MatchNone:         0.0,
	MatchBeginner:     0.4,
	MatchPractitioner: 0.7,
	MatchAdvanced:     1.0,
	MatchExpert:       1.1, // slight bonus above any requirement
}

var matchOrder = []MatchLevel{MatchNone, MatchBeginner, MatchPractitioner, MatchAdvanced, MatchExpert}

// ParseMatch maps a name onto the match scale. Unknown names resolve to
// MatchNone.
func ParseMatch(s string) MatchLevel {
	s = strings.TrimSpace(s)
	for _, m := range matchOrder {
		if strings.EqualFold(s, string(m)) {
			return m
		}
	}
	return MatchNone
}

// Weight is the value an employee's held level contributes.
func (m MatchLevel) Weight() float64 {
	return matchWeights[m]
}

// RequiredWeight is the value a requirement at this level demands. None has
// no weight, so a requirement at None scores zero rather than dividing by it.
func (m MatchLevel) RequiredWeight() float64 {
	if m == MatchNone {
		return 0
	}
	return matchWeights[m]
}
