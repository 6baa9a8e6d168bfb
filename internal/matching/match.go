// Package matching scores employees' HR skill profiles against strategic
// goals on the weighted match scale and selects the candidate pool handed to
// the external ranking step.
package matching

import (
	"sort"
	"strings"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

// DefaultTopN is the candidate pool size kept by Candidates.
const DefaultTopN = 50

// SkillMatch explains the score of one required skill.
type SkillMatch struct {
	SkillCode         string  `json:"skill_code"`
	RequiredLevel     string  `json:"required_level"`
	InferredLevel     string  `json:"inferred_level"`
	InternalSkillName *string `json:"internal_skill_name"`
	Score             float64 `json:"score"`
}

// GoalMatch is one profile's fit for one goal.
type GoalMatch struct {
	GoalID       string       `json:"goal_id"`
	MatchScore   float64      `json:"match_score"`
	SkillMatches []SkillMatch `json:"skill_matches"`
}

// Candidate is a profile scored against every goal.
type Candidate struct {
	EmployeeID    string      `json:"employee_id"`
	OverallScore  float64     `json:"overall_score"`
	PerGoalScores []GoalMatch `json:"per_goal_scores"`
}

// Pool is the pre-scored context handed to the ranking step.
type Pool struct {
	Goals          []models.Goal `json:"goals"`
	Candidates     []Candidate   `json:"candidates"`
	TotalEmployees int           `json:"total_employees"`
}

// keywordRule matches a strategy code fragment to internal name fragments.
type keywordRule struct {
	code  string
	names []string
}

// A name qualifies for a code when any rule's code fragment occurs in the code
// and one of its name fragments occurs in the name.
var keywordRules = []keywordRule{
	{code: "python", names: []string{"python"}},
	{code: "mlops", names: []string{"mlops", "machine learning"}},
	{code: "ci", names: []string{"ci/cd", "continuous integration", "version control", "devops"}},
	{code: "sql", names: []string{"sql"}},
}

func keywordMatch(code, name string) bool {
	for _, r := range keywordRules {
		if !strings.Contains(code, r.code) {
			continue
		}
		for _, n := range r.names {
			if strings.Contains(name, n) {
				return true
			}
		}
	}
	return false
}

// Score evaluates p against every required skill of goal. Mapped internal
// names are tried first; keyword rules apply only when none of them matched.
func Score(p Profile, goal models.Goal, mapping SkillMapping) GoalMatch {
	out := GoalMatch{GoalID: goal.ID, SkillMatches: []SkillMatch{}}
	if len(goal.RequiredSkills) == 0 {
		return out
	}

	names := sortedNames(p.Skills)
	sum := 0.0
	for _, rs := range goal.RequiredSkills {
		best := 0.0
		bestLevel := string(level.MatchNone)
		var bestName *string

		for _, name := range mapping[rs.SkillID] {
			lvl, ok := p.Skills[name]
			if !ok || lvl == "" {
				continue
			}
			if v := level.ParseMatch(lvl).Weight(); v > best {
				best, bestLevel, bestName = v, lvl, ptr(name)
			}
		}

		if bestName == nil {
			code := strings.ToLower(rs.SkillID)
			for _, name := range names {
				if !keywordMatch(code, strings.ToLower(name)) {
					continue
				}
				lvl := p.Skills[name]
				if v := level.ParseMatch(lvl).Weight(); v > best {
					best, bestLevel, bestName = v, lvl, ptr(name)
				}
			}
		}

		score := 0.0
		if req := level.ParseMatch(rs.TargetLevel).RequiredWeight(); req > 0 {
			score = min(best/req, 1.0)
		}
		sum += score
		out.SkillMatches = append(out.SkillMatches, SkillMatch{
			SkillCode:         rs.SkillID,
			RequiredLevel:     rs.TargetLevel,
			InferredLevel:     bestLevel,
			InternalSkillName: bestName,
			Score:             score,
		})
	}
	out.MatchScore = sum / float64(len(goal.RequiredSkills))
	return out
}

// Candidates scores every profile against every goal, sums the goal scores
// and keeps the topN best (DefaultTopN when topN <= 0). Equal totals keep
// roster order.
func Candidates(profiles []Profile, goals []models.Goal, mapping SkillMapping, topN int) []Candidate {
	if topN <= 0 {
		topN = DefaultTopN
	}
	all := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		c := Candidate{EmployeeID: p.EmployeeID, PerGoalScores: make([]GoalMatch, 0, len(goals))}
		for _, g := range goals {
			m := Score(p, g, mapping)
			c.PerGoalScores = append(c.PerGoalScores, m)
			c.OverallScore += m.MatchScore
		}
		all = append(all, c)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].OverallScore > all[j].OverallScore })
	if len(all) > topN {
		all = all[:topN]
	}
	return all
}

// BuildPool bundles the scored candidates with the goals they were scored
// against.
func BuildPool(profiles []Profile, goals []models.Goal, mapping SkillMapping, topN int) Pool {
	return Pool{
		Goals:          goals,
		Candidates:     Candidates(profiles, goals, mapping, topN),
		TotalEmployees: len(profiles),
	}
}

func sortedNames(skills map[string]string) []string {
	names := make([]string, 0, len(skills))
	for n := range skills {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func ptr(s string) *string { return &s }
