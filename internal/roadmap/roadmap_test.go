package roadmap

import (
	"reflect"
	"testing"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

func hours(h int) *int { return &h }

func fixture() (*models.SkillCatalog, *models.LearningCatalog) {
	skills := &models.SkillCatalog{Skills: []models.Skill{
		{ID: "skill.mlops", Name: "MLOps", Prereqs: []string{"skill.python", "skill.docker", "skill.k8s"}},
	}}
	learning := &models.LearningCatalog{
		Courses: []models.Course{
			{SkillID: "skill.python", Title: "Python Basics"},
			{SkillID: "skill.k8s", Title: "Kubernetes", Hours: hours(24)},
			{SkillID: "skill.mlops", Title: "MLOps Intro", Hours: hours(16)},
			{SkillID: "skill.mlops", Title: "MLOps Deep Dive", Hours: hours(30)},
			{SkillID: "skill.mlops", Title: "MLOps Bootcamp", Hours: hours(30)},
			{SkillID: "skill.mlops", Title: "MLOps Unknown"},
		},
		Mentors: []models.Mentor{
			{Name: "Eva", Skills: []string{"skill.sql"}},
			{Name: "Petr", Skills: []string{"skill.mlops"}},
		},
	}
	return skills, learning
}

func TestBuild_FullPlan(t *testing.T) {
	skills, learning := fixture()
	emp := models.Employee{Skills: []models.EmployeeSkill{{SkillID: "skill.mlops", Level: "Practitioner"}}}

	plan := Build(emp, "skill.mlops", level.Expert, skills, learning)

	want := []models.RoadmapStep{
		{Type: models.StepCourse, Title: "Python Basics", Hours: 20, SkillID: "skill.python"},
		{Type: models.StepCourse, Title: "Kubernetes", Hours: 24, SkillID: "skill.k8s"},
		{Type: models.StepCourse, Title: "MLOps Deep Dive", Hours: 30, SkillID: "skill.mlops"},
		{Type: models.StepMentoring, Title: "Mentor: Petr", Hours: 15},
		{Type: models.StepProject, Title: ProjectTitle, Hours: 20},
	}
	if !reflect.DeepEqual(plan.Steps, want) {
		t.Errorf("steps =\n%+v\nwant\n%+v", plan.Steps, want)
	}
	if plan.ExpectedUplift != "Practitioner→Expert" {
		t.Errorf("uplift = %q", plan.ExpectedUplift)
	}
	if plan.TotalHours() != 109 {
		t.Errorf("total = %d, want 109", plan.TotalHours())
	}
}

func TestBuild_SelfStudyWhenNoCourse(t *testing.T) {
	plan := Build(models.Employee{}, "skill.rust", level.Advanced, &models.SkillCatalog{}, &models.LearningCatalog{
		Mentors: []models.Mentor{{Name: "Jan", Skills: []string{"skill.rust"}}},
	})
	want := []models.RoadmapStep{
		{Type: models.StepCourse, Title: "Self-study: skill.rust", Hours: 80, SkillID: "skill.rust"},
		{Type: models.StepMentoring, Title: "Mentor: Jan", Hours: 16},
		{Type: models.StepProject, Title: ProjectTitle, Hours: 20},
	}
	if !reflect.DeepEqual(plan.Steps, want) {
		t.Errorf("steps = %+v", plan.Steps)
	}
	if plan.ExpectedUplift != "Novice→Advanced" {
		t.Errorf("uplift = %q", plan.ExpectedUplift)
	}
}

func TestBuild_AlreadyAtTarget(t *testing.T) {
	emp := models.Employee{Skills: []models.EmployeeSkill{{SkillID: "s", Level: "Expert"}}}
	plan := Build(emp, "s", level.Advanced, nil, &models.LearningCatalog{
		Mentors: []models.Mentor{{Name: "Jan", Skills: []string{"s"}}},
	})
	if len(plan.Steps) != 1 || plan.Steps[0].Type != models.StepProject {
		t.Errorf("steps = %+v, want project only", plan.Steps)
	}
	if plan.ExpectedUplift != "Expert→Advanced" {
		t.Errorf("uplift = %q", plan.ExpectedUplift)
	}
}

func TestBuild_UnspecifiedMainCourseHours(t *testing.T) {
	learning := &models.LearningCatalog{Courses: []models.Course{{SkillID: "s", Title: "Only"}}}
	plan := Build(models.Employee{}, "s", level.Practitioner, nil, learning)
	if plan.Steps[0].Hours != MainCourseHours {
		t.Errorf("hours = %d, want %d", plan.Steps[0].Hours, MainCourseHours)
	}
}

func TestBuild_AlwaysEndsWithOneProject(t *testing.T) {
	skills, learning := fixture()
	inputs := []struct {
		skills   *models.SkillCatalog
		learning *models.LearningCatalog
		skill    string
	}{
		{nil, nil, "x"},
		{skills, learning, "skill.mlops"},
		{skills, nil, "skill.mlops"},
		{nil, learning, "skill.python"},
	}
	for _, in := range inputs {
		for _, target := range level.All() {
			plan := Build(models.Employee{}, in.skill, target, in.skills, in.learning)
			n := 0
			for _, s := range plan.Steps {
				if s.Type == models.StepProject {
					n++
				}
			}
			last := plan.Steps[len(plan.Steps)-1]
			if n != 1 || last.Type != models.StepProject || last.Hours != ProjectHours {
				t.Errorf("%s/%v: steps = %+v", in.skill, target, plan.Steps)
			}
		}
	}
}
