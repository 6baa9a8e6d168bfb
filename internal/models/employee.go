package models

import "github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"

// EmployeeSkill is one recorded (skill, level) pair.
type EmployeeSkill struct {
	SkillID string `json:"skill_id"`
	Level   string `json:"level"`
}

// Employee is a read-only roster record.
type Employee struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	WorkloadPct   *float64        `json:"workload_pct,omitempty"`
	AttritionProb *float64        `json:"attrition_prob,omitempty"`
	Skills        []EmployeeSkill `json:"skills"`
}

// Roster is the employees.json document.
type Roster struct {
	Employees []Employee `json:"employees"`
}

// Find returns the employee with the given id.
func (r *Roster) Find(id string) (Employee, bool) {
	if r == nil {
		return Employee{}, false
	}
	for _, e := range r.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}

// WorkloadOr returns the workload fraction, or def when unrecorded.
func (e Employee) WorkloadOr(def float64) float64 {
	if e.WorkloadPct == nil {
		return def
	}
	return *e.WorkloadPct
}

// AttritionOr returns the attrition probability, or def when unrecorded.
func (e Employee) AttritionOr(def float64) float64 {
	if e.AttritionProb == nil {
		return def
	}
	return *e.AttritionProb
}

// RawLevel returns the first recorded level string for skillID.
func (e Employee) RawLevel(skillID string) (string, bool) {
	for _, s := range e.Skills {
		if s.SkillID == skillID {
			return s.Level, true
		}
	}
	return "", false
}

// LevelOf returns the employee's ordinal level for skillID; Novice when the
// skill is not recorded.
func (e Employee) LevelOf(skillID string) level.Level {
	raw, _ := e.RawLevel(skillID)
	return level.Parse(raw)
}

// Holds reports whether the employee has any recorded level for skillID.
func (e Employee) Holds(skillID string) bool {
	_, ok := e.RawLevel(skillID)
	return ok
}
