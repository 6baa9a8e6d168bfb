// Package ranking delegates the cross-goal best-N selection to the reasoning
// service and accepts its answer only after validation.
package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/apperr"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/matching"
)

// DefaultTopN is the number of employees requested when none is given.
const DefaultTopN = 10

// GoalFit is one goal an employee is a good fit for.
type GoalFit struct {
	GoalID     string  `json:"goal_id"`
	MatchScore float64 `json:"match_score"`
}

// Pick is one selected employee.
type Pick struct {
	EmployeeID        string    `json:"employee_id"`
	OverallMatchScore float64   `json:"overall_match_score"`
	BestFitGoals      []GoalFit `json:"best_fit_goals"`
	SummaryReasoning  string    `json:"summary_reasoning"`
}

// Validate implements validation.Validatable.
func (p Pick) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.EmployeeID, validation.Required),
		validation.Field(&p.OverallMatchScore, validation.Min(0.0)),
	)
}

// Result is the accepted ranking. Goals is passed through as returned.
type Result struct {
	Goals               json.RawMessage `json:"goals,omitempty"`
	TopEmployeesOverall []Pick          `json:"top_employees_overall"`
}

// ArtifactSaver preserves replies that failed validation.
type ArtifactSaver interface {
	SaveArtifact(kind, ext string, content []byte) (string, error)
}

// CallRecorder receives one entry per reasoning-service call.
type CallRecorder interface {
	RecordCall(ctx context.Context, purpose, status, errMsg string, took time.Duration) error
}

// Ranker runs the external selection step.
type Ranker struct {
	ai        aiclient.Completer
	artifacts ArtifactSaver
	calls     CallRecorder
}

// New creates a Ranker. artifacts and calls may be nil.
func New(ai aiclient.Completer, artifacts ArtifactSaver, calls CallRecorder) *Ranker {
	return &Ranker{ai: ai, artifacts: artifacts, calls: calls}
}

// Rank asks for the best n employees (DefaultTopN when n <= 0) across all
// goals of pool. Upstream failures abort the step; replies failing
// validation are preserved and reported as *apperr.RejectedError.
func (r *Ranker) Rank(ctx context.Context, strategyText string, pool matching.Pool, n int) (Result, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	prompt, err := Prompt(strategyText, pool, n)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	reply, err := r.ai.Complete(ctx, aiclient.Request{System: systemPrompt(n), User: prompt})
	if err != nil {
		r.record(ctx, "error", err.Error(), time.Since(start))
		return Result{}, fmt.Errorf("ranking: %w", err)
	}

	res, err := ParseReply(reply, n, pool)
	if err != nil {
		r.record(ctx, "rejected", err.Error(), time.Since(start))
		rej := &apperr.RejectedError{Reason: "ranking: " + err.Error(), Raw: reply}
		if r.artifacts != nil {
			path, saveErr := r.artifacts.SaveArtifact("ranking", ".txt", []byte(reply))
			if saveErr != nil {
				slog.Error("ranking: save rejected reply", slog.String("error", saveErr.Error()))
			}
			rej.Artifact = path
		}
		return Result{}, rej
	}
	r.record(ctx, "ok", "", time.Since(start))
	return res, nil
}

func (r *Ranker) record(ctx context.Context, status, errMsg string, took time.Duration) {
	if r.calls == nil {
		return
	}
	if err := r.calls.RecordCall(ctx, "ranking", status, errMsg, took); err != nil {
		slog.Warn("ranking: record call", slog.String("error", err.Error()))
	}
}

// ParseReply decodes and validates a reply against pool. The reply must hold
// at most n unique employees drawn from the pool, and at least one when the
// pool is non-empty.
func ParseReply(reply string, n int, pool matching.Pool) (Result, error) {
	var res Result
	if err := json.Unmarshal([]byte(reply), &res); err != nil {
		return Result{}, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	known := make(map[string]bool, len(pool.Candidates))
	for _, c := range pool.Candidates {
		known[c.EmployeeID] = true
	}

	rules := []validation.Rule{validation.Length(0, n), validation.By(uniqueKnown(known))}
	if len(pool.Candidates) > 0 {
		rules = append(rules, validation.Required.Error("no employees selected"))
	}
	if err := validation.ValidateStruct(&res,
		validation.Field(&res.TopEmployeesOverall, rules...),
	); err != nil {
		return Result{}, err
	}
	return res, nil
}

func uniqueKnown(known map[string]bool) validation.RuleFunc {
	return func(value any) error {
		picks, _ := value.([]Pick)
		seen := make(map[string]bool, len(picks))
		var dups, unknown []string
		for _, p := range picks {
			if seen[p.EmployeeID] {
				dups = append(dups, p.EmployeeID)
			}
			seen[p.EmployeeID] = true
			if p.EmployeeID != "" && !known[p.EmployeeID] {
				unknown = append(unknown, p.EmployeeID)
			}
		}
		switch {
		case len(dups) > 0:
			return errors.New("duplicate employee ids: " + strings.Join(dups, ", "))
		case len(unknown) > 0:
			return errors.New("employees not in candidate pool: " + strings.Join(unknown, ", "))
		}
		return nil
	}
}
