package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/apperr"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

// OfferedSkillNames caps the internal skill names included in the prompt.
const OfferedSkillNames = 100

// ArtifactSaver preserves replies that failed validation.
type ArtifactSaver interface {
	SaveArtifact(kind, ext string, content []byte) (string, error)
}

const mappingSystemPrompt = `You map strategic skill codes onto the internal skill names of an HR system.
You receive strategic goals whose required skills use codes such as skill.mlops or skill.python,
and a list of internal skill names such as Python, Machine Learning or SQL.
Reply with a single JSON object and nothing else.`

const mappingTask = `For every skill code listed under required_skills, choose zero or more internal
skill names from the list that best represent it. Prefer a few strong matches to many weak ones.

Reply with exactly this JSON structure:
{"mappings": [{"strategy_skill_code": "skill.mlops", "internal_skill_names": ["Machine Learning"]}]}

Rules:
- internal_skill_names must come only from the provided list
- use an empty list when nothing fits
- no comments, no text before or after the JSON`

// MappingPrompt builds the user message for GenerateMapping. codes are the
// required skill codes the reply has to cover.
func MappingPrompt(strategyText string, codes, offered []string) (string, error) {
	list, err := json.MarshalIndent(offered, "", "  ")
	if err != nil {
		return "", fmt.Errorf("matching: encode skill names: %w", err)
	}
	var b strings.Builder
	b.WriteString("Strategy document:\n\n")
	b.WriteString(strategyText)
	if len(codes) > 0 {
		b.WriteString("\n\nSkill codes to map:\n")
		for _, c := range codes {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	fmt.Fprintf(&b, "\n\nInternal skill names (top %d by frequency):\n\n", len(offered))
	b.Write(list)
	b.WriteString("\n\n")
	b.WriteString(mappingTask)
	return b.String(), nil
}

// ParseMappingReply validates a reasoning-service reply. Names outside
// offered are dropped with a warning.
func ParseMappingReply(reply string, offered []string) (MappingDocument, error) {
	var doc struct {
		Mappings *[]MappingEntry `json:"mappings"`
	}
	if err := json.Unmarshal([]byte(reply), &doc); err != nil {
		return MappingDocument{}, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if doc.Mappings == nil {
		return MappingDocument{}, errors.New("reply has no mappings field")
	}
	entries := *doc.Mappings
	for i, e := range entries {
		if err := validation.ValidateStruct(&e,
			validation.Field(&e.StrategySkillCode, validation.Required),
		); err != nil {
			return MappingDocument{}, fmt.Errorf("mappings[%d]: %w", i, err)
		}
	}

	allowed := make(map[string]bool, len(offered))
	for _, n := range offered {
		allowed[n] = true
	}
	out := MappingDocument{Mappings: make([]MappingEntry, 0, len(entries))}
	for _, e := range entries {
		kept := []string{}
		for _, n := range e.InternalSkillNames {
			if !allowed[n] {
				slog.Warn("matching: dropping unknown internal skill",
					slog.String("code", e.StrategySkillCode),
					slog.String("name", n),
				)
				continue
			}
			kept = append(kept, n)
		}
		out.Mappings = append(out.Mappings, MappingEntry{StrategySkillCode: e.StrategySkillCode, InternalSkillNames: kept})
	}
	return out, nil
}

// GenerateMapping asks the reasoning service to map the strategy's skill codes
// onto the profiles' internal skill names. Upstream failures abort with the
// error; replies that fail validation are saved through artifacts and
// reported as *apperr.RejectedError.
func GenerateMapping(ctx context.Context, ai aiclient.Completer, artifacts ArtifactSaver, strategyText string, goals []models.Goal, profiles []Profile) (MappingDocument, error) {
	offered := TopSkillNames(profiles, OfferedSkillNames)
	prompt, err := MappingPrompt(strategyText, StrategyCodes(goals), offered)
	if err != nil {
		return MappingDocument{}, err
	}

	reply, err := ai.Complete(ctx, aiclient.Request{System: mappingSystemPrompt, User: prompt})
	if err != nil {
		return MappingDocument{}, fmt.Errorf("matching: generate mapping: %w", err)
	}

	doc, err := ParseMappingReply(reply, offered)
	if err != nil {
		rej := &apperr.RejectedError{Reason: "matching: " + err.Error(), Raw: reply}
		if artifacts != nil {
			path, saveErr := artifacts.SaveArtifact("mapping", ".txt", []byte(reply))
			if saveErr != nil {
				slog.Error("matching: save rejected reply", slog.String("error", saveErr.Error()))
			}
			rej.Artifact = path
		}
		return MappingDocument{}, rej
	}
	return doc, nil
}
