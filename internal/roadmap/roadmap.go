// Package roadmap assembles remediation plans that move one employee from
// their current level in a skill to a goal's target level.
package roadmap

import (
	"math"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

// Plan defaults.
const (
	PrereqCourseHours = 20
	MainCourseHours   = models.DefaultStepHours
	SelfStudyHours    = models.DefaultStepHours
	MentoringShare    = 0.2
	ProjectHours      = 20
	ProjectTitle      = "On-the-job task: apply skill on live initiative"
)

// Build returns the ordered plan for emp to reach target in skillID. Missing
// catalog data only shortens the plan; the final project step is always
// present.
func Build(emp models.Employee, skillID string, target level.Level, skills *models.SkillCatalog, learning *models.LearningCatalog) models.RoadmapPlan {
	current := emp.LevelOf(skillID)
	steps := current.StepsTo(target)

	var plan []models.RoadmapStep

	for _, p := range skills.Prereqs(skillID) {
		if c, ok := learning.CourseFor(p); ok {
			plan = append(plan, courseStep(c, PrereqCourseHours))
		}
	}

	if c, ok := mainCourse(learning.CoursesFor(skillID)); ok {
		plan = append(plan, courseStep(c, MainCourseHours))
	} else if steps > 0 {
		plan = append(plan, models.RoadmapStep{
			Type:    models.StepCourse,
			Title:   "Self-study: " + skillID,
			Hours:   SelfStudyHours * steps,
			SkillID: skillID,
		})
	}

	courseHours := 0
	for _, s := range plan {
		if s.Type == models.StepCourse {
			courseHours += s.Hours
		}
	}
	if m, ok := learning.MentorFor(skillID); ok && courseHours > 0 {
		plan = append(plan, models.RoadmapStep{
			Type:  models.StepMentoring,
			Title: "Mentor: " + m.Name,
			Hours: int(math.RoundToEven(MentoringShare * float64(courseHours))),
		})
	}

	plan = append(plan, models.RoadmapStep{
		Type:  models.StepProject,
		Title: ProjectTitle,
		Hours: ProjectHours,
	})

	return models.RoadmapPlan{
		Steps:          plan,
		ExpectedUplift: level.Transition(current, target),
	}
}

// mainCourse picks the longest course; unspecified hours rank as zero and the
// earliest course wins ties.
func mainCourse(courses []models.Course) (models.Course, bool) {
	if len(courses) == 0 {
		return models.Course{}, false
	}
	best := courses[0]
	for _, c := range courses[1:] {
		if c.HoursOr(0) > best.HoursOr(0) {
			best = c
		}
	}
	return best, true
}

func courseStep(c models.Course, defHours int) models.RoadmapStep {
	return models.RoadmapStep{
		Type:    models.StepCourse,
		Title:   c.Title,
		Hours:   c.HoursOr(defHours),
		SkillID: c.SkillID,
	}
}
