package matching

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/apperr"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

func goal(id string, reqs ...string) models.Goal {
	g := models.Goal{ID: id}
	for i := 0; i+1 < len(reqs); i += 2 {
		g.RequiredSkills = append(g.RequiredSkills, models.RequiredSkill{SkillID: reqs[i], TargetLevel: reqs[i+1]})
	}
	return g
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore_MappedNamesWin(t *testing.T) {
	p := Profile{EmployeeID: "1", Skills: map[string]string{
		"Machine Learning": "Practitioner",
		"MLOps Tools":      "Expert",
	}}
	mapping := SkillMapping{"skill.mlops": {"Machine Learning"}}

	m := Score(p, goal("cap.ml", "skill.mlops", "Advanced"), mapping)

	sm := m.SkillMatches[0]
	if sm.InternalSkillName == nil || *sm.InternalSkillName != "Machine Learning" {
		t.Errorf("internal name = %v, want mapped name", sm.InternalSkillName)
	}
	if sm.InferredLevel != "Practitioner" || !near(sm.Score, 0.7) {
		t.Errorf("match = %+v", sm)
	}
	if !near(m.MatchScore, 0.7) {
		t.Errorf("goal score = %v", m.MatchScore)
	}
}

func TestScore_KeywordFallback(t *testing.T) {
	p := Profile{Skills: map[string]string{
		"Version Control (Git)": "Beginner",
		"DevOps":                "Advanced",
		"PostgreSQL":            "Expert",
	}}
	m := Score(p, goal("cap.x", "skill.ci", "Advanced", "skill.sql", "Practitioner", "skill.rust", "Advanced"), nil)

	ci := m.SkillMatches[0]
	if *ci.InternalSkillName != "DevOps" || !near(ci.Score, 1.0) {
		t.Errorf("ci = %+v", ci)
	}
	sql := m.SkillMatches[1]
	if *sql.InternalSkillName != "PostgreSQL" || sql.Score != 1.0 {
		t.Errorf("sql = %+v (score capped at 1)", sql)
	}
	rust := m.SkillMatches[2]
	if rust.InternalSkillName != nil || rust.InferredLevel != "None" || rust.Score != 0 {
		t.Errorf("rust = %+v", rust)
	}
	if !near(m.MatchScore, 2.0/3.0) {
		t.Errorf("goal score = %v", m.MatchScore)
	}
}

func TestScore_RequiredNoneScoresZero(t *testing.T) {
	p := Profile{Skills: map[string]string{"Python": "Expert"}}
	m := Score(p, goal("g", "skill.python", "Novice"), nil)
	if m.SkillMatches[0].Score != 0 {
		t.Errorf("score = %v, want 0 for unweighted requirement", m.SkillMatches[0].Score)
	}
}

func TestScore_EmptyGoal(t *testing.T) {
	m := Score(Profile{}, goal("g"), nil)
	if m.MatchScore != 0 || len(m.SkillMatches) != 0 {
		t.Errorf("match = %+v", m)
	}
}

func TestCandidates_TopNStable(t *testing.T) {
	profiles := []Profile{
		{EmployeeID: "a", Skills: map[string]string{"Python": "Beginner"}},
		{EmployeeID: "b", Skills: map[string]string{"Python": "Advanced"}},
		{EmployeeID: "c", Skills: map[string]string{"Python": "Beginner"}},
		{EmployeeID: "d"},
	}
	goals := []models.Goal{goal("g1", "skill.python", "Advanced"), goal("g2", "skill.python", "Beginner")}

	got := Candidates(profiles, goals, nil, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	ids := []string{got[0].EmployeeID, got[1].EmployeeID, got[2].EmployeeID}
	if strings.Join(ids, ",") != "b,a,c" {
		t.Errorf("order = %v", ids)
	}
	if !near(got[0].OverallScore, 2.0) || len(got[0].PerGoalScores) != 2 {
		t.Errorf("top = %+v", got[0])
	}

	pool := BuildPool(profiles, goals, nil, 0)
	if pool.TotalEmployees != 4 || len(pool.Candidates) != 4 {
		t.Errorf("pool = %d/%d", len(pool.Candidates), pool.TotalEmployees)
	}
}

func TestTopSkillNames(t *testing.T) {
	profiles := []Profile{
		{Skills: map[string]string{"SQL": "x", "Python": "x"}},
		{Skills: map[string]string{"Python": "x", "Go": "x"}},
		{Skills: map[string]string{"Python": "x", "SQL": "x"}},
	}
	got := TopSkillNames(profiles, 2)
	if strings.Join(got, ",") != "Python,SQL" {
		t.Errorf("got %v", got)
	}
}

func TestMappingDocumentRoundTrip(t *testing.T) {
	m, err := ParseMapping([]byte(`{"mappings":[{"strategy_skill_code":"skill.sql","internal_skill_names":["SQL"]},{"strategy_skill_code":"skill.ci","internal_skill_names":[]}]}`))
	if err != nil {
		t.Fatalf("ParseMapping: %v", err)
	}
	doc := m.Document()
	if len(doc.Mappings) != 2 || doc.Mappings[0].StrategySkillCode != "skill.ci" {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Mappings[0].InternalSkillNames == nil {
		t.Error("empty names should encode as []")
	}
	if _, err := ParseMapping([]byte("nope")); err == nil {
		t.Error("expected decode error")
	}
}

type fakeAI struct {
	reply string
	err   error
	req   aiclient.Request
}

func (f *fakeAI) Complete(_ context.Context, req aiclient.Request) (string, error) {
	f.req = req
	return f.reply, f.err
}

type memArtifacts struct{ saved map[string]string }

func (m *memArtifacts) SaveArtifact(kind, ext string, content []byte) (string, error) {
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	path := "rejected/" + kind + ext
	m.saved[path] = string(content)
	return path, nil
}

func TestGenerateMapping_Accepts(t *testing.T) {
	ai := &fakeAI{reply: `{"mappings":[{"strategy_skill_code":"skill.sql","internal_skill_names":["SQL","Invented"]}]}`}
	profiles := []Profile{{Skills: map[string]string{"SQL": "Advanced"}}}

	doc, err := GenerateMapping(context.Background(), ai, nil, "## Goal: X", nil, profiles)
	if err != nil {
		t.Fatalf("GenerateMapping: %v", err)
	}
	if got := doc.Mappings[0].InternalSkillNames; len(got) != 1 || got[0] != "SQL" {
		t.Errorf("names = %v, want unknown name dropped", got)
	}
	if !strings.Contains(ai.req.User, `"SQL"`) || !strings.Contains(ai.req.User, "## Goal: X") {
		t.Errorf("prompt missing context: %q", ai.req.User)
	}
}

func TestGenerateMapping_RejectsAndSavesRaw(t *testing.T) {
	for _, reply := range []string{"Sure! Here is the mapping.", `{"other":1}`, `{"mappings":[{"internal_skill_names":[]}]}`} {
		art := &memArtifacts{}
		_, err := GenerateMapping(context.Background(), &fakeAI{reply: reply}, art, "", nil, nil)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%q: err = %v, want ErrValidation", reply, err)
		}
		var rej *apperr.RejectedError
		if !errors.As(err, &rej) || rej.Raw != reply || art.saved[rej.Artifact] != reply {
			t.Errorf("%q: raw reply not preserved: %+v", reply, rej)
		}
	}
}

func TestGenerateMapping_UpstreamAborts(t *testing.T) {
	ai := &fakeAI{err: apperr.ErrUpstream}
	art := &memArtifacts{}
	_, err := GenerateMapping(context.Background(), ai, art, "", nil, nil)
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Errorf("err = %v", err)
	}
	if len(art.saved) != 0 {
		t.Error("nothing should be saved on upstream failure")
	}
}

func TestGenerateMapping_PromptListsCodes(t *testing.T) {
	ai := &fakeAI{reply: `{"mappings":[]}`}
	goals := []models.Goal{
		goal("cap.a", "skill.python", "Advanced", "skill.sql", "Expert"),
		goal("cap.b", "skill.sql", "Advanced", "skill.mlops", "Practitioner"),
	}
	if _, err := GenerateMapping(context.Background(), ai, nil, "", goals, nil); err != nil {
		t.Fatalf("GenerateMapping: %v", err)
	}
	want := "Skill codes to map:\n- skill.python\n- skill.sql\n- skill.mlops\n"
	if !strings.Contains(ai.req.User, want) {
		t.Errorf("prompt = %q, want codes in document order", ai.req.User)
	}
}
