// Package strategy parses and renders the strategy document: a Markdown file
// listing goals and the skill levels each one requires.
package strategy

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

var (
	goalRe      = regexp.MustCompile(`(?i)^##\s*Goal:\s*(.+)$`)
	fieldRe     = regexp.MustCompile(`(?i)^-\s*(id|target_date|headcount_target):\s*(.+)$`)
	skillLineRe = regexp.MustCompile(`^\s*-\s*([\w.]+):\s*(\w+)$`)
	slugRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

// Document is a parsed strategy document.
type Document struct {
	Title string
	// AsOf pins the reference date used for deadline arithmetic. Empty means
	// "today".
	AsOf  string
	Goals []models.Goal
}

// Goal returns the goal with the given id.
func (d *Document) Goal(id string) (models.Goal, bool) {
	if d == nil {
		return models.Goal{}, false
	}
	return models.FindGoal(d.Goals, id)
}

// Parse extracts goals from raw strategy text. Lines that do not fit the
// convention are skipped; Parse never fails.
func Parse(data []byte) *Document {
	fm, body := splitFrontmatter(normalizeNewlines(data))
	doc := &Document{
		Goals: parseGoals(body),
		Title: deriveTitle(fm, body),
	}
	if fm != nil {
		if v, ok := fm["as_of"]; ok {
			doc.AsOf = strings.TrimSpace(scalarString(v))
		}
	}
	return doc
}

// ParseString is Parse for string input.
func ParseString(text string) *Document {
	return Parse([]byte(text))
}

func parseGoals(body string) []models.Goal {
	lines := splitLines(body)
	var (
		goals   []models.Goal
		current *models.Goal
		reqs    []models.RequiredSkill
	)
	flush := func() {
		if current == nil {
			return
		}
		current.RequiredSkills = reqs
		if current.RequiredSkills == nil {
			current.RequiredSkills = []models.RequiredSkill{}
		}
		goals = append(goals, *current)
	}

	for i := 0; i < len(lines); {
		line := strings.TrimRight(lines[i], " \t\r")

		if m := goalRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &models.Goal{
				Name:            strings.TrimSpace(m[1]),
				HeadcountTarget: models.DefaultHeadcountTarget,
			}
			reqs = nil
			i++
			continue
		}

		if current == nil {
			i++
			continue
		}

		if m := fieldRe.FindStringSubmatch(line); m != nil {
			setField(current, strings.ToLower(m[1]), strings.TrimSpace(m[2]))
			i++
			continue
		}

		if opensSkillBlock(line) {
			i++
			for i < len(lines) && inSkillBlock(lines[i]) {
				item := strings.TrimSpace(lines[i])
				if sm := skillLineRe.FindStringSubmatch(item); sm != nil {
					reqs = append(reqs, models.RequiredSkill{
						SkillID:     strings.TrimSpace(sm[1]),
						TargetLevel: strings.TrimSpace(sm[2]),
					})
				}
				i++
			}
			continue
		}
		i++
	}
	flush()

	for i := range goals {
		if goals[i].ID == "" {
			goals[i].ID = DeriveID(goals[i].Name)
		}
	}
	return goals
}

func setField(g *models.Goal, key, val string) {
	switch key {
	case "id":
		g.ID = val
	case "target_date":
		g.TargetDate = val
	case "headcount_target":
		n, err := strconv.Atoi(val)
		if err != nil {
			n = models.DefaultHeadcountTarget
		}
		g.HeadcountTarget = n
	}
}

func opensSkillBlock(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "required_skills:") ||
		strings.HasPrefix(strings.TrimSpace(lower), "- required_skills")
}

func inSkillBlock(line string) bool {
	return strings.HasPrefix(line, "  ") ||
		strings.HasPrefix(line, "\t") ||
		strings.HasPrefix(strings.TrimSpace(line), "-")
}

// DeriveID builds a goal id from its name: "cap." followed by the lower-cased
// name with every non-alphanumeric run replaced by "_".
func DeriveID(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim("cap."+slug, ".")
}

// splitLines splits on "\n" with no per-line length limit.
func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

// normalizeNewlines turns CRLF and lone CR line endings into LF.
func normalizeNewlines(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. Without a valid block the whole input is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if fm != nil {
		if s := scalarString(fm["title"]); s != "" {
			return s
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// scalarString renders a decoded YAML scalar. yaml.v3 turns unquoted dates
// into time.Time, so those are formatted back to ISO form.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case interface{ Format(string) string }:
		return t.Format("2006-01-02")
	default:
		b, err := yaml.Marshal(t)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
}
