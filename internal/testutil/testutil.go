// Package testutil provides shared test helpers for setting up data
// directories and history databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/history"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "skillgap-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory holding the fixture files.
func TestDataDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range Fixture {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// EmptyDataDir creates a temporary data directory with no files.
func EmptyDataDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Fixture is a small consistent dataset keyed by its default file names.
// The strategy pins as_of so deadlines do not drift with the clock.
var Fixture = map[string]string{
	"skills.json": `{
  "skills": [
    {"id": "skill.python", "name": "Python"},
    {"id": "skill.docker", "name": "Docker"},
    {"id": "skill.mlops", "name": "MLOps", "prereqs": ["skill.python", "skill.docker"]},
    {"id": "skill.sql", "name": "SQL"}
  ],
  "hours_per_step": {"Novice→Practitioner": 30, "Practitioner→Advanced": 50}
}`,
	"employees.json": `{
  "employees": [
    {"id": "e1", "name": "Alice Novak", "role": "Data Engineer", "workload_pct": 0.5, "attrition_prob": 0.1,
     "skills": [{"skill_id": "skill.python", "level": "Advanced"}, {"skill_id": "skill.mlops", "level": "Practitioner"}]},
    {"id": "e2", "name": "Bohdan Kral", "role": "Backend Developer",
     "skills": [{"skill_id": "skill.sql", "level": "Expert"}]},
    {"id": "e3", "name": "Cecilie Dvorak", "role": "ML Engineer", "workload_pct": 0.95, "attrition_prob": 0.6,
     "skills": [{"skill_id": "skill.mlops", "level": "Advanced"}, {"skill_id": "skill.docker", "level": "Novice"}]}
  ]
}`,
	"learning.json": `{
  "courses": [
    {"skill_id": "skill.docker", "title": "Docker Essentials", "hours": 12},
    {"skill_id": "skill.mlops", "title": "MLOps Foundations", "hours": 24},
    {"skill_id": "skill.mlops", "title": "MLOps in Production", "hours": 36}
  ],
  "mentors": [{"name": "Petra Svobodova", "skills": ["skill.mlops"]}]
}`,
	"strategy.md": `---
as_of: 2026-01-01
---
# Strategic Goals

## Goal: ML Platform
- id: cap.ml_platform
- target_date: 2026-12-31
- headcount_target: 2
- required_skills:
  - skill.mlops: Advanced
  - skill.python: Practitioner

## Goal: Data Warehouse
- target_date: 2026-06-30
- headcount_target: 1
- required_skills:
  - skill.sql: Advanced
`,
	"strategy_skill_mapping.json": `{
  "mappings": [
    {"strategy_skill_code": "skill.mlops", "internal_skill_names": ["Machine Learning"]},
    {"strategy_skill_code": "skill.sql", "internal_skill_names": []}
  ]
}`,
	"employee_skills.json": `[
  {"employee_id": "e1", "skills": {"Python": "Advanced", "Machine Learning": "Practitioner"}},
  {"employee_id": "e2", "skills": {"SQL Server": "Expert"}},
  {"employee_id": "e3", "skills": {"Machine Learning": "Expert", "Python Scripting": "Beginner"}}
]`,
}
