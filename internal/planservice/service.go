// Package planservice coordinates the planner: it owns the current dataset
// snapshot and exposes the gap overview, candidate lists, roadmaps, strategy
// reformatting, external ranking and skill mapping to the HTTP, MCP and CLI
// surfaces.
package planservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/apperr"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/dataset"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/history"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/matching"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/ranking"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/reformat"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/roadmap"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/scoring"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/sse"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/storage"
)

// Publisher receives planner events. *sse.Broker implements it.
type Publisher interface {
	Publish(event sse.Event)
	PublishChange(event sse.Event)
}

// Service coordinates storage, scoring and history.
type Service struct {
	store    storage.Provider
	files    dataset.Files
	db       history.Recorder
	ai       aiclient.Completer
	events   Publisher
	logger   *slog.Logger
	now      func() time.Time
	workers  int
	topN     int
	poolSize int

	reformatter *reformat.Reformatter
	ranker      *ranking.Ranker
	snap        atomic.Pointer[dataset.Snapshot]
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sends planner events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the reference clock for deadline arithmetic.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRanking sets the default best-N, the candidate pool size handed to the
// ranking step and the number of scoring workers.
func WithRanking(topN, poolSize, workers int) Option {
	return func(s *Service) {
		s.topN, s.poolSize, s.workers = topN, poolSize, workers
	}
}

// New creates a service and loads the first snapshot. db may be nil, which
// disables history.
func New(ctx context.Context, store storage.Provider, files dataset.Files, db history.Recorder, ai aiclient.Completer, opts ...Option) (*Service, error) {
	s := &Service{
		store:    store,
		files:    files,
		db:       db,
		ai:       ai,
		logger:   slog.Default(),
		now:      time.Now,
		topN:     ranking.DefaultTopN,
		poolSize: matching.DefaultTopN,
	}
	for _, o := range opts {
		o(s)
	}

	var calls reformat.CallRecorder
	var rankCalls ranking.CallRecorder
	if db != nil {
		calls, rankCalls = db, db
	}
	s.reformatter = reformat.New(ai, store, reformat.WithPath(files.Strategy), reformat.WithCallRecorder(calls))
	s.ranker = ranking.New(ai, store, rankCalls)

	if _, _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current dataset snapshot.
func (s *Service) Snapshot() *dataset.Snapshot {
	return s.snap.Load()
}

// Reload reads the data directory into a new snapshot and swaps it in. When
// history is enabled it returns the files changed since the last sync and,
// if any changed, records a coverage snapshot.
func (s *Service) Reload(ctx context.Context) (*dataset.Snapshot, []string, error) {
	snap, err := dataset.Load(s.store, s.files)
	if err != nil {
		return nil, nil, fmt.Errorf("planservice: reload: %w", err)
	}
	s.snap.Store(snap)

	var changed []string
	if s.db != nil {
		changed, err = s.db.Sync(ctx, snap.Checksums, s.logger)
		if err != nil {
			s.logger.Warn("planservice: sync history", slog.String("error", err.Error()))
		} else if len(changed) > 0 {
			if err := s.recordCoverage(ctx, snap); err != nil {
				s.logger.Warn("planservice: record coverage", slog.String("error", err.Error()))
			}
		}
	}

	s.logger.Info("planservice: dataset loaded",
		slog.Int("employees", len(snap.Employees)),
		slog.Int("goals", len(snap.Goals())),
		slog.Int("changed", len(changed)),
	)
	if s.events != nil {
		s.events.PublishChange(sse.Event{Type: sse.EventDatasetReloaded, Data: map[string]any{
			"changed":   nonNil(changed),
			"employees": len(snap.Employees),
			"goals":     len(snap.Goals()),
		}})
	}
	return snap, changed, nil
}

func (s *Service) recordCoverage(ctx context.Context, snap *dataset.Snapshot) error {
	blocks := scoring.GapBlocks(snap.Goals(), snap.Employees, snap.Skills)
	rows := make([]history.CoverageRow, len(blocks))
	for i, b := range blocks {
		rows[i] = history.CoverageRow{
			CapID:           b.CapID,
			SkillID:         b.SkillID,
			TargetLevel:     b.TargetLevel,
			Coverage:        b.CurrentCoverage,
			HeadcountTarget: b.HeadcountTarget,
		}
	}
	return s.db.RecordCoverage(ctx, uuid.NewString(), s.now(), rows)
}

// Overview is the gap summary across every goal.
type Overview struct {
	Title     string             `json:"title"`
	AsOf      string             `json:"as_of,omitempty"`
	Goals     []models.Goal      `json:"goals"`
	GapBlocks []scoring.GapBlock `json:"gap_blocks"`
	Employees int                `json:"employees"`
	LoadedAt  time.Time          `json:"loaded_at"`
}

// Overview builds the gap summary from the current snapshot.
func (s *Service) Overview(_ context.Context) *Overview {
	snap := s.Snapshot()
	return &Overview{
		Title:     snap.Strategy.Title,
		AsOf:      snap.Strategy.AsOf,
		Goals:     nonNil(snap.Goals()),
		GapBlocks: nonNil(scoring.GapBlocks(snap.Goals(), snap.Employees, snap.Skills)),
		Employees: len(snap.Employees),
		LoadedAt:  snap.LoadedAt,
	}
}

// Goals returns the parsed strategy goals.
func (s *Service) Goals(_ context.Context) []models.Goal {
	return nonNil(s.Snapshot().Goals())
}

// CandidateList is the ranked roster for one goal requirement.
type CandidateList struct {
	Goal           models.Goal         `json:"goal"`
	SkillID        string              `json:"skill_id"`
	SkillName      string              `json:"skill_name"`
	TargetLevel    string              `json:"target_level"`
	DeadlineMonths float64             `json:"deadline_months"`
	Coverage       int                 `json:"coverage"`
	Rows           []models.GapMetrics `json:"rows"`
}

// Candidates scores and ranks every employee for one goal requirement.
func (s *Service) Candidates(ctx context.Context, capID, skillID string) (*CandidateList, error) {
	snap := s.Snapshot()
	goal, req, err := requirement(snap, capID, skillID)
	if err != nil {
		return nil, err
	}
	target := level.Parse(req.TargetLevel)
	deadline := snap.DeadlineMonths(goal, s.now())

	rows, err := scoring.Candidates(ctx, snap.Employees, scoring.Request{
		SkillID:        skillID,
		Target:         target,
		Catalog:        snap.Skills,
		DeadlineMonths: deadline,
	}, s.workers)
	if err != nil {
		return nil, fmt.Errorf("planservice: candidates: %w", err)
	}

	return &CandidateList{
		Goal:           goal,
		SkillID:        skillID,
		SkillName:      snap.Skills.NameOr(skillID, skillID),
		TargetLevel:    target.String(),
		DeadlineMonths: deadline,
		Coverage:       scoring.Coverage(snap.Employees, skillID, target),
		Rows:           nonNil(rows),
	}, nil
}

// RoadmapView is one employee's plan for one goal requirement.
type RoadmapView struct {
	Goal        models.Goal        `json:"goal"`
	Employee    models.Employee    `json:"employee"`
	SkillID     string             `json:"skill_id"`
	SkillName   string             `json:"skill_name"`
	TargetLevel string             `json:"target_level"`
	Metrics     models.GapMetrics  `json:"metrics"`
	Plan        models.RoadmapPlan `json:"plan"`
	PlanHours   int                `json:"plan_hours"`
}

// Roadmap builds the remediation plan for one employee.
func (s *Service) Roadmap(_ context.Context, capID, skillID, empID string) (*RoadmapView, error) {
	snap := s.Snapshot()
	goal, req, err := requirement(snap, capID, skillID)
	if err != nil {
		return nil, err
	}
	emp, ok := snap.Employee(empID)
	if !ok {
		return nil, fmt.Errorf("planservice: employee %q: %w", empID, apperr.ErrNotFound)
	}
	target := level.Parse(req.TargetLevel)
	plan := roadmap.Build(emp, skillID, target, snap.Skills, snap.Learning)
	return &RoadmapView{
		Goal:        goal,
		Employee:    emp,
		SkillID:     skillID,
		SkillName:   snap.Skills.NameOr(skillID, skillID),
		TargetLevel: target.String(),
		Metrics:     scoring.Score(emp, skillID, target, snap.Skills, snap.DeadlineMonths(goal, s.now())),
		Plan:        plan,
		PlanHours:   plan.TotalHours(),
	}, nil
}

// Coverage counts employees at or above levelName in skillID.
func (s *Service) Coverage(_ context.Context, skillID, levelName string) int {
	snap := s.Snapshot()
	return scoring.Coverage(snap.Employees, skillID, level.Parse(levelName))
}

func requirement(snap *dataset.Snapshot, capID, skillID string) (models.Goal, models.RequiredSkill, error) {
	goal, ok := snap.Strategy.Goal(capID)
	if !ok {
		return models.Goal{}, models.RequiredSkill{}, fmt.Errorf("planservice: goal %q: %w", capID, apperr.ErrNotFound)
	}
	req, ok := goal.Requirement(skillID)
	if !ok {
		return models.Goal{}, models.RequiredSkill{}, fmt.Errorf("planservice: skill requirement %q in %q: %w", skillID, capID, apperr.ErrNotFound)
	}
	return goal, req, nil
}

// ProposeStrategy reformats raw into a proposal without writing it.
func (s *Service) ProposeStrategy(ctx context.Context, raw string) (*reformat.Proposal, error) {
	return s.ApplyStrategy(ctx, raw, false)
}

// ApplyStrategy reformats raw and, when the proposal is accepted and confirm
// is set, replaces the strategy document and reloads. Rejected proposals are
// returned with a nil error; the document is left untouched.
func (s *Service) ApplyStrategy(ctx context.Context, raw string, confirm bool) (*reformat.Proposal, error) {
	p, err := s.reformatter.Propose(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("planservice: propose strategy: %w", err)
	}

	if p.State == reformat.StateAccepted && confirm {
		if err := s.reformatter.Apply(p, true); err != nil {
			s.recordRevision(ctx, p)
			return p, fmt.Errorf("planservice: apply strategy: %w", err)
		}
	}
	s.recordRevision(ctx, p)

	if s.events != nil {
		switch p.State {
		case reformat.StateRejected:
			s.events.Publish(sse.Event{Type: sse.EventStrategyRejected, Data: map[string]string{
				"id": p.ID, "reason": p.Reason, "artifact": p.Artifact,
			}})
		case reformat.StateAccepted:
			if p.Applied {
				s.events.PublishChange(sse.Event{Type: sse.EventStrategyAccepted, Data: map[string]any{
					"id": p.ID, "goals": p.Goals,
				}})
			}
		}
	}

	if p.Applied {
		if _, _, err := s.Reload(ctx); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (s *Service) recordRevision(ctx context.Context, p *reformat.Proposal) {
	if s.db == nil {
		return
	}
	err := s.db.RecordRevision(ctx, history.Revision{
		ID:       p.ID,
		State:    string(p.State),
		Checksum: storage.Checksum([]byte(p.Text)),
		Goals:    p.Goals,
		Reason:   p.Reason,
		Upstream: p.UpstreamError,
		Artifact: p.Artifact,
		Applied:  p.Applied,
	})
	if err != nil {
		s.logger.Warn("planservice: record revision", slog.String("error", err.Error()))
	}
}

// MatchPool scores the HR skill profiles against every goal and keeps the
// best poolSize (the configured default when <= 0).
func (s *Service) MatchPool(_ context.Context, poolSize int) matching.Pool {
	if poolSize <= 0 {
		poolSize = s.poolSize
	}
	snap := s.Snapshot()
	return matching.BuildPool(snap.Profiles, snap.Goals(), snap.Mapping, poolSize)
}

// RankOverall selects the best topN employees across all goals through the
// reasoning service. An empty candidate pool yields an empty result without
// a call.
func (s *Service) RankOverall(ctx context.Context, topN int) (ranking.Result, error) {
	if topN <= 0 {
		topN = s.topN
	}
	pool := s.MatchPool(ctx, 0)
	if len(pool.Candidates) == 0 {
		return ranking.Result{TopEmployeesOverall: []ranking.Pick{}}, nil
	}
	if s.ai == nil {
		return ranking.Result{}, fmt.Errorf("planservice: rank: %w", apperr.ErrNotConfigured)
	}
	res, err := s.ranker.Rank(ctx, s.Snapshot().StrategyText, pool, topN)
	if err != nil {
		return ranking.Result{}, fmt.Errorf("planservice: rank: %w", err)
	}
	return res, nil
}

// GenerateMapping asks the reasoning service for a strategy-code mapping.
// With save set, the mapping file is replaced and the dataset reloaded.
func (s *Service) GenerateMapping(ctx context.Context, save bool) (matching.MappingDocument, error) {
	if s.ai == nil {
		return matching.MappingDocument{}, fmt.Errorf("planservice: mapping: %w", apperr.ErrNotConfigured)
	}
	snap := s.Snapshot()
	start := time.Now()
	doc, err := matching.GenerateMapping(ctx, s.ai, s.store, snap.StrategyText, snap.Goals(), snap.Profiles)
	s.recordCall(ctx, "mapping", err, time.Since(start))
	if err != nil {
		return matching.MappingDocument{}, fmt.Errorf("planservice: %w", err)
	}
	// One entry per code, sorted.
	doc = doc.Mapping().Document()
	if !save {
		return doc, nil
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return matching.MappingDocument{}, fmt.Errorf("planservice: encode mapping: %w", err)
	}
	if err := s.store.Write(s.files.Mapping, data); err != nil {
		return matching.MappingDocument{}, fmt.Errorf("planservice: write mapping: %w", err)
	}
	if _, _, err := s.Reload(ctx); err != nil {
		return matching.MappingDocument{}, err
	}
	return doc, nil
}

func (s *Service) recordCall(ctx context.Context, purpose string, err error, took time.Duration) {
	if s.db == nil {
		return
	}
	status, msg := "ok", ""
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status, msg = "rejected", err.Error()
	case err != nil:
		status, msg = "error", err.Error()
	}
	if recErr := s.db.RecordCall(ctx, purpose, status, msg, took); recErr != nil {
		s.logger.Warn("planservice: record call", slog.String("error", recErr.Error()))
	}
}

// CoverageHistory returns recorded coverage for one goal requirement, newest
// first.
func (s *Service) CoverageHistory(ctx context.Context, capID, skillID string, limit int) ([]history.CoverageRow, error) {
	if _, _, err := requirement(s.Snapshot(), capID, skillID); err != nil {
		return nil, err
	}
	if s.db == nil {
		return []history.CoverageRow{}, nil
	}
	rows, err := s.db.CoverageHistory(ctx, capID, skillID, limit)
	if err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// Revisions returns recorded strategy proposals, newest first.
func (s *Service) Revisions(ctx context.Context, limit int) ([]history.Revision, error) {
	if s.db == nil {
		return []history.Revision{}, nil
	}
	revs, err := s.db.Revisions(ctx, limit)
	if err != nil {
		return nil, err
	}
	return nonNil(revs), nil
}

// Calls returns recorded reasoning-service calls, newest first.
func (s *Service) Calls(ctx context.Context, limit int) ([]history.Call, error) {
	if s.db == nil {
		return []history.Call{}, nil
	}
	calls, err := s.db.Calls(ctx, limit)
	if err != nil {
		return nil, err
	}
	return nonNil(calls), nil
}

// Files lists the JSON inputs and the strategy document under the data root
// with their checksums. Rejected artifacts are left out.
func (s *Service) Files(_ context.Context) ([]storage.FileInfo, error) {
	all, err := s.store.List("", "")
	if err != nil {
		return nil, fmt.Errorf("planservice: list files: %w", err)
	}
	out := make([]storage.FileInfo, 0, len(all))
	for _, f := range all {
		if strings.HasPrefix(f.Path, storage.RejectedDir+"/") {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
