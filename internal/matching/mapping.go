package matching

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

// Profile is one employee's HR skill record: internal skill names mapped to
// names on the weighted match scale.
type Profile struct {
	EmployeeID string            `json:"employee_id"`
	Skills     map[string]string `json:"skills"`
}

// SkillMapping translates strategy skill codes to internal skill names. It is
// passed explicitly to every scoring call.
type SkillMapping map[string][]string

// MappingEntry is one row of the mapping document.
type MappingEntry struct {
	StrategySkillCode  string   `json:"strategy_skill_code"`
	InternalSkillNames []string `json:"internal_skill_names"`
}

// MappingDocument is the on-disk and reasoning-service layout of a mapping.
type MappingDocument struct {
	Mappings []MappingEntry `json:"mappings"`
}

// Mapping converts the document into a lookup. Later entries for the same
// code replace earlier ones.
func (d MappingDocument) Mapping() SkillMapping {
	m := make(SkillMapping, len(d.Mappings))
	for _, e := range d.Mappings {
		m[e.StrategySkillCode] = append([]string(nil), e.InternalSkillNames...)
	}
	return m
}

// Document returns the mapping as a document with codes in sorted order.
func (m SkillMapping) Document() MappingDocument {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	doc := MappingDocument{Mappings: make([]MappingEntry, 0, len(codes))}
	for _, c := range codes {
		names := m[c]
		if names == nil {
			names = []string{}
		}
		doc.Mappings = append(doc.Mappings, MappingEntry{StrategySkillCode: c, InternalSkillNames: names})
	}
	return doc
}

// ParseMapping decodes a mapping document.
func ParseMapping(data []byte) (SkillMapping, error) {
	var doc MappingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("matching: decode mapping: %w", err)
	}
	return doc.Mapping(), nil
}

// StrategyCodes lists the distinct required skill codes across goals in
// document order.
func StrategyCodes(goals []models.Goal) []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range goals {
		for _, r := range g.RequiredSkills {
			if !seen[r.SkillID] {
				seen[r.SkillID] = true
				out = append(out, r.SkillID)
			}
		}
	}
	return out
}

// TopSkillNames returns up to n internal skill names ordered by how many
// profiles hold them, most common first, then by name.
func TopSkillNames(profiles []Profile, n int) []string {
	counts := map[string]int{}
	for _, p := range profiles {
		for name := range p.Skills {
			counts[name]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	return names
}
