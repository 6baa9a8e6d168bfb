// Package models defines the domain types shared by the planner packages.
package models

import "github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"

// Defaults applied when a record omits a value.
const (
	DefaultStepHours       = 40
	DefaultWorkload        = 0.8
	DefaultAttrition       = 0.2
	DefaultHeadcountTarget = 1
)

// Skill is a catalog entry identified by a stable code such as "skill.mlops".
type Skill struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Prereqs []string `json:"prereqs,omitempty"`
}

// SkillCatalog is the skills.json document.
type SkillCatalog struct {
	Skills []Skill `json:"skills"`
	// HoursPerStep maps "From→To" transitions to learning hours.
	HoursPerStep map[string]int `json:"hours_per_step,omitempty"`
}

// Skill returns the catalog entry for id.
func (c *SkillCatalog) Skill(id string) (Skill, bool) {
	if c == nil {
		return Skill{}, false
	}
	for _, s := range c.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

// Prereqs returns the prerequisite codes of id in catalog order, or nil when
// the skill is unknown.
func (c *SkillCatalog) Prereqs(id string) []string {
	s, _ := c.Skill(id)
	return s.Prereqs
}

// NameOr returns the display name of id, or def when the skill is unknown or
// unnamed.
func (c *SkillCatalog) NameOr(id, def string) string {
	if s, ok := c.Skill(id); ok && s.Name != "" {
		return s.Name
	}
	return def
}

// HoursForStep returns the hours for a single from→to transition, or def when
// the table has no entry.
func (c *SkillCatalog) HoursForStep(from, to level.Level, def int) int {
	if c == nil {
		return def
	}
	if h, ok := c.HoursPerStep[level.Transition(from, to)]; ok {
		return h
	}
	return def
}

// Course is a learning-catalog course addressing one skill.
type Course struct {
	SkillID string `json:"skill_id"`
	Title   string `json:"title"`
	Hours   *int   `json:"hours,omitempty"`
}

// HoursOr returns the course hours, or def when unspecified.
func (c Course) HoursOr(def int) int {
	if c.Hours == nil {
		return def
	}
	return *c.Hours
}

// Mentor is a person who can coach the listed skills.
type Mentor struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Covers reports whether the mentor lists skillID.
func (m Mentor) Covers(skillID string) bool {
	for _, s := range m.Skills {
		if s == skillID {
			return true
		}
	}
	return false
}

// LearningCatalog is the learning.json document.
type LearningCatalog struct {
	Courses []Course `json:"courses"`
	Mentors []Mentor `json:"mentors"`
}

// CourseFor returns the first course addressing skillID in catalog order.
func (l *LearningCatalog) CourseFor(skillID string) (Course, bool) {
	if l == nil {
		return Course{}, false
	}
	for _, c := range l.Courses {
		if c.SkillID == skillID {
			return c, true
		}
	}
	return Course{}, false
}

// CoursesFor returns every course addressing skillID in catalog order.
func (l *LearningCatalog) CoursesFor(skillID string) []Course {
	if l == nil {
		return nil
	}
	var out []Course
	for _, c := range l.Courses {
		if c.SkillID == skillID {
			out = append(out, c)
		}
	}
	return out
}

// MentorFor returns the first mentor covering skillID in catalog order.
func (l *LearningCatalog) MentorFor(skillID string) (Mentor, bool) {
	if l == nil {
		return Mentor{}, false
	}
	for _, m := range l.Mentors {
		if m.Covers(skillID) {
			return m, true
		}
	}
	return Mentor{}, false
}
