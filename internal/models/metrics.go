package models

// GapMetrics is the evaluation of one employee against one skill requirement.
type GapMetrics struct {
	EmployeeID   string   `json:"employee_id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	SkillID      string   `json:"skill_id"`
	CurrentLevel string   `json:"current_level"`
	TargetLevel  string   `json:"target_level"`
	GapSteps     int      `json:"gap_steps"`
	TotalHours   int      `json:"total_hours"`
	TTRMonths    float64  `json:"ttr_months"`
	Readiness    int      `json:"readiness"`
	Risk         int      `json:"risk"`
	Reasons      []string `json:"reasons"`
}

// StepType tags a roadmap step.
type StepType string

// Roadmap step kinds.
const (
	StepCourse    StepType = "course"
	StepMentoring StepType = "mentoring"
	StepProject   StepType = "project"
)

// RoadmapStep is one remediation activity.
type RoadmapStep struct {
	Type    StepType `json:"type"`
	Title   string   `json:"title"`
	Hours   int      `json:"hours"`
	SkillID string   `json:"skill_id,omitempty"`
}

// RoadmapPlan is an ordered remediation plan for one skill gap.
type RoadmapPlan struct {
	Steps          []RoadmapStep `json:"steps"`
	ExpectedUplift string        `json:"expected_uplift"`
}

// TotalHours sums the hours of every step.
func (p RoadmapPlan) TotalHours() int {
	total := 0
	for _, s := range p.Steps {
		total += s.Hours
	}
	return total
}
