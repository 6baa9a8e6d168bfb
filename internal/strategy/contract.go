package strategy

// FormatContract describes the strategy document convention for external
// formatters and MCP clients.
const FormatContract = `# Strategy Document Format

A strategy document lists strategic goals and the skill levels each one needs.

## Structure

` + "```" + `markdown
# Strategic Goals

## Goal: <Goal Title>
- id: cap.<short_id>
- target_date: YYYY-MM-DD
- headcount_target: N
- required_skills:
  - skill.<skill_id>: <Level>
` + "```" + `

## Rules

1. Each goal starts with a ` + "`## Goal: <title>`" + ` header.
2. ` + "`id`" + ` uses the ` + "`cap.`" + ` prefix. When omitted it is derived from the title.
3. ` + "`target_date`" + ` is an ISO date. ` + "`headcount_target`" + ` is an integer (default 1).
4. Required skills are indented dash lines ` + "`- skill.<id>: <Level>`" + ` under ` + "`- required_skills:`" + `.
5. Levels are one of: Novice, Practitioner, Advanced, Expert.
6. Optional YAML frontmatter may set ` + "`as_of: YYYY-MM-DD`" + ` to pin the date deadlines are measured from.
`

// ReformatInstruction is the system message sent to the reasoning service
// when reshaping free text into the strategy convention.
const ReformatInstruction = "You are a strict formatter. Reshape the provided text into a Markdown document that EXACTLY follows this template:\n\n" +
	"# Strategic Goals\n\n" +
	"## Goal: <Goal Title>\n" +
	"- id: cap.<short_id>\n" +
	"- target_date: YYYY-MM-DD\n" +
	"- headcount_target: N\n" +
	"- required_skills:\n" +
	"  - skill.<skill_id>: <Level>\n\n" +
	"Repeat the structure for each goal. Use 'cap.' prefix for capability ids and 'skill.' for skill ids.\n" +
	"Levels must be one of Novice, Practitioner, Advanced, Expert.\n" +
	"If some fields are missing in the source, fill them based on the skill set typically required to reach such goals.\n" +
	"Return ONLY the Markdown document, with no explanations and no JSON wrappers. The output must start with '# Strategic Goals'."
