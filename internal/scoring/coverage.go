package scoring

import (
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

// Coverage counts employees whose level for skillID is at or above target.
func Coverage(employees []models.Employee, skillID string, target level.Level) int {
	n := 0
	for _, e := range employees {
		if e.LevelOf(skillID) >= target {
			n++
		}
	}
	return n
}

// GapBlock summarises one goal requirement against the whole roster.
type GapBlock struct {
	CapID           string `json:"cap_id"`
	CapName         string `json:"cap_name"`
	SkillID         string `json:"skill_id"`
	SkillName       string `json:"skill_name"`
	TargetLevel     string `json:"target_level"`
	HeadcountTarget int    `json:"headcount_target"`
	CurrentCoverage int    `json:"current_coverage"`
	Shortfall       int    `json:"shortfall"`
	Deadline        string `json:"deadline"`
}

// GapBlocks builds one block per (goal, required skill) in document order.
func GapBlocks(goals []models.Goal, employees []models.Employee, catalog *models.SkillCatalog) []GapBlock {
	var out []GapBlock
	for _, g := range goals {
		for _, r := range g.RequiredSkills {
			cov := Coverage(employees, r.SkillID, level.Parse(r.TargetLevel))
			out = append(out, GapBlock{
				CapID:           g.ID,
				CapName:         g.Name,
				SkillID:         r.SkillID,
				SkillName:       catalog.NameOr(r.SkillID, r.SkillID),
				TargetLevel:     r.TargetLevel,
				HeadcountTarget: g.HeadcountTarget,
				CurrentCoverage: cov,
				Shortfall:       max(0, g.HeadcountTarget-cov),
				Deadline:        g.TargetDate,
			})
		}
	}
	return out
}
