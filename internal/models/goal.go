package models

// RequiredSkill is one (skill, level) requirement of a goal.
type RequiredSkill struct {
	SkillID     string `json:"skill_id"`
	TargetLevel string `json:"target_level"`
}

// Goal is a strategic capability parsed from the strategy document.
type Goal struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	TargetDate      string          `json:"target_date,omitempty"`
	HeadcountTarget int             `json:"headcount_target"`
	RequiredSkills  []RequiredSkill `json:"required_skills"`
}

// Requirement returns the goal's requirement for skillID.
func (g Goal) Requirement(skillID string) (RequiredSkill, bool) {
	for _, r := range g.RequiredSkills {
		if r.SkillID == skillID {
			return r, true
		}
	}
	return RequiredSkill{}, false
}

// FindGoal returns the goal with the given id.
func FindGoal(goals []Goal, id string) (Goal, bool) {
	for _, g := range goals {
		if g.ID == id {
			return g, true
		}
	}
	return Goal{}, false
}
