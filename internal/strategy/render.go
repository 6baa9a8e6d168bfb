package strategy

import (
	"fmt"
	"strings"
)

// DefaultTitle heads rendered documents that carry no title of their own.
const DefaultTitle = "Strategic Goals"

// Render writes doc back in the canonical line convention. The output parses
// back to the same goals.
func Render(doc *Document) string {
	var b strings.Builder
	if doc.AsOf != "" {
		fmt.Fprintf(&b, "---\nas_of: %q\n---\n\n", doc.AsOf)
	}
	title := doc.Title
	if title == "" {
		title = DefaultTitle
	}
	fmt.Fprintf(&b, "# %s\n", title)
	for _, g := range doc.Goals {
		fmt.Fprintf(&b, "\n## Goal: %s\n", g.Name)
		fmt.Fprintf(&b, "- id: %s\n", g.ID)
		if g.TargetDate != "" {
			fmt.Fprintf(&b, "- target_date: %s\n", g.TargetDate)
		}
		fmt.Fprintf(&b, "- headcount_target: %d\n", g.HeadcountTarget)
		b.WriteString("- required_skills:\n")
		for _, r := range g.RequiredSkills {
			fmt.Fprintf(&b, "  - %s: %s\n", r.SkillID, r.TargetLevel)
		}
	}
	return b.String()
}
