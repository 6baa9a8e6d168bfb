package ranking

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/matching"
)

func systemPrompt(n int) string {
	return fmt.Sprintf(`You are an HR skills analytics assistant.
You receive strategic goals and a pre-scored list of candidate employees.
Select the best %d employees overall across all goals and reply with a single valid JSON document only.`, n)
}

const replySchema = `{
  "goals": [
    {"goal_id": "<id>", "target_date": "<ISO date>", "headcount_target": <int>,
     "required_skills": [{"skill_code": "<code>", "required_level": "<level>"}]}
  ],
  "top_employees_overall": [
    {"employee_id": "<id>", "overall_match_score": <0..1>,
     "best_fit_goals": [{"goal_id": "<id>", "match_score": <0..1>}],
     "summary_reasoning": "<2-4 sentences>"}
  ]
}`

// Prompt builds the user message: the strategy text, the pre-scored pool and
// the reply contract for n picks.
func Prompt(strategyText string, pool matching.Pool, n int) (string, error) {
	ctxJSON, err := json.MarshalIndent(pool, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ranking: encode pool: %w", err)
	}
	want := min(n, len(pool.Candidates))

	var b strings.Builder
	b.WriteString("Strategy document:\n\n---\n")
	b.WriteString(strategyText)
	b.WriteString("\n---\n\nPre-scored candidates (goals, candidates with per_goal_scores, total_employees):\n\n")
	b.Write(ctxJSON)
	fmt.Fprintf(&b, `

Task:
1. Interpret the goals and their required skills.
2. Using overall_score and the balance of per_goal_scores, pick the %d employees who best fit the strategy overall.
   A very strong fit for a single goal is acceptable.
3. Reply with exactly this JSON structure:

%s

Constraints:
- top_employees_overall must contain exactly %d unique employees taken from the candidates list.
- Treat the existing numeric scores as strong guidance; reorder only with a reason.
- The JSON must be syntactically valid.
- Output nothing outside the JSON.
`, want, replySchema, want)
	return b.String(), nil
}
