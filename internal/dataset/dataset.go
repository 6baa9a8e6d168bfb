// Package dataset loads the planner's inputs from the data directory into an
// immutable Snapshot. Requests always score against one snapshot; reloads
// build a new one.
package dataset

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/matching"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/storage"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/strategy"
)

// Files names the inputs relative to the data root.
type Files struct {
	Skills    string `yaml:"skills"`
	Employees string `yaml:"employees"`
	Learning  string `yaml:"learning"`
	Strategy  string `yaml:"strategy"`
	Mapping   string `yaml:"mapping"`
	Profiles  string `yaml:"profiles"`
}

// DefaultFiles returns the conventional file names.
func DefaultFiles() Files {
	return Files{
		Skills:    "skills.json",
		Employees: "employees.json",
		Learning:  "learning.json",
		Strategy:  "strategy.md",
		Mapping:   "strategy_skill_mapping.json",
		Profiles:  "employee_skills.json",
	}
}

// Names lists every configured file name.
func (f Files) Names() []string {
	return []string{f.Skills, f.Employees, f.Learning, f.Strategy, f.Mapping, f.Profiles}
}

// Snapshot is one consistent view of the inputs. It must not be mutated
// after Load returns.
type Snapshot struct {
	Skills       *models.SkillCatalog
	Employees    []models.Employee
	Learning     *models.LearningCatalog
	Strategy     *strategy.Document
	StrategyText string
	Mapping      matching.SkillMapping
	Profiles     []matching.Profile
	// Checksums maps each file that was present to its SHA-256.
	Checksums map[string]string
	LoadedAt  time.Time
}

// Load reads every input. The skill catalog and roster are required; the
// learning catalog, strategy, mapping and HR profiles degrade to empty values
// when absent.
func Load(store storage.Provider, files Files) (*Snapshot, error) {
	snap := &Snapshot{
		Skills:    &models.SkillCatalog{},
		Learning:  &models.LearningCatalog{},
		Strategy:  &strategy.Document{Title: strategy.DefaultTitle},
		Mapping:   matching.SkillMapping{},
		Checksums: map[string]string{},
		LoadedAt:  time.Now().UTC(),
	}

	data, err := snap.read(store, files.Skills, true)
	if err != nil {
		return nil, err
	}
	if err := decode(files.Skills, data, snap.Skills); err != nil {
		return nil, err
	}

	data, err = snap.read(store, files.Employees, true)
	if err != nil {
		return nil, err
	}
	var roster models.Roster
	if err := decode(files.Employees, data, &roster); err != nil {
		return nil, err
	}
	snap.Employees = roster.Employees

	if data, err = snap.read(store, files.Learning, false); err != nil {
		return nil, err
	} else if data != nil {
		if err := decode(files.Learning, data, snap.Learning); err != nil {
			return nil, err
		}
	}

	if data, err = snap.read(store, files.Strategy, false); err != nil {
		return nil, err
	} else if data != nil {
		snap.StrategyText = string(data)
		snap.Strategy = strategy.Parse(data)
	}

	if data, err = snap.read(store, files.Mapping, false); err != nil {
		return nil, err
	} else if data != nil {
		m, err := matching.ParseMapping(data)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s: %w", files.Mapping, err)
		}
		snap.Mapping = m
	}

	if data, err = snap.read(store, files.Profiles, false); err != nil {
		return nil, err
	} else if data != nil {
		if err := decode(files.Profiles, data, &snap.Profiles); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// read returns nil data for a missing optional file.
func (s *Snapshot) read(store storage.Provider, name string, required bool) ([]byte, error) {
	if name == "" {
		if required {
			return nil, fmt.Errorf("dataset: required file name is empty")
		}
		return nil, nil
	}
	ok, err := store.Exists(name)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if !ok {
		if required {
			return nil, fmt.Errorf("dataset: %s is missing", name)
		}
		return nil, nil
	}
	data, err := store.Read(name)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	s.Checksums[name] = storage.Checksum(data)
	return data, nil
}

func decode(name string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("dataset: decode %s: %w", name, err)
	}
	return nil
}

// Goals returns the parsed strategy goals.
func (s *Snapshot) Goals() []models.Goal {
	return s.Strategy.Goals
}

// Employee returns the roster entry with the given id.
func (s *Snapshot) Employee(id string) (models.Employee, bool) {
	r := models.Roster{Employees: s.Employees}
	return r.Find(id)
}

// DeadlineMonths is the time left until a goal's target date, measured from
// the strategy's reference date.
func (s *Snapshot) DeadlineMonths(g models.Goal, now time.Time) float64 {
	return strategy.MonthsUntil(g.TargetDate, s.Strategy.ReferenceTime(now))
}
