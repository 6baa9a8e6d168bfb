package history

import (
	"context"
	"fmt"
	"time"
)

// Revision is one strategy proposal outcome.
type Revision struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Checksum  string    `json:"checksum"`
	Goals     int       `json:"goals"`
	Reason    string    `json:"reason,omitempty"`
	Upstream  string    `json:"upstream_error,omitempty"`
	Artifact  string    `json:"artifact,omitempty"`
	Applied   bool      `json:"applied"`
	CreatedAt time.Time `json:"created_at"`
}

// Call is one reasoning-service call.
type Call struct {
	Purpose   string        `json:"purpose"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// CoverageRow is the coverage of one goal requirement in one run.
type CoverageRow struct {
	RunID           string    `json:"run_id"`
	CapID           string    `json:"cap_id"`
	SkillID         string    `json:"skill_id"`
	TargetLevel     string    `json:"target_level"`
	Coverage        int       `json:"coverage"`
	HeadcountTarget int       `json:"headcount_target"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecordRevision inserts or updates a revision by id.
func (db *DB) RecordRevision(ctx context.Context, r Revision) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO strategy_revisions (id, state, checksum, goals, reason, upstream, artifact, applied, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state    = excluded.state,
			checksum = excluded.checksum,
			goals    = excluded.goals,
			reason   = excluded.reason,
			upstream = excluded.upstream,
			artifact = excluded.artifact,
			applied  = excluded.applied
	`, r.ID, r.State, r.Checksum, r.Goals, r.Reason, r.Upstream, r.Artifact, r.Applied, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: record revision: %w", err)
	}
	return nil
}

// Revisions returns the newest revisions first.
func (db *DB) Revisions(ctx context.Context, limit int) ([]Revision, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, state, checksum, goals, reason, upstream, artifact, applied, created_at
		FROM strategy_revisions ORDER BY created_at DESC, rowid DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.State, &r.Checksum, &r.Goals, &r.Reason, &r.Upstream, &r.Artifact, &r.Applied, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordCall appends one reasoning-service call.
func (db *DB) RecordCall(ctx context.Context, purpose, status, errMsg string, took time.Duration) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO ai_calls (purpose, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?)`, purpose, status, errMsg, took.Milliseconds(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("history: record call: %w", err)
	}
	return nil
}

// Calls returns the newest calls first.
func (db *DB) Calls(ctx context.Context, limit int) ([]Call, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT purpose, status, error, duration_ms, created_at
		FROM ai_calls ORDER BY id DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: calls: %w", err)
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		var c Call
		var ms int64
		if err := rows.Scan(&c.Purpose, &c.Status, &c.Error, &ms, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordCoverage stores one run's coverage rows in a single transaction.
func (db *DB) RecordCoverage(ctx context.Context, runID string, at time.Time, rows []CoverageRow) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO coverage_snapshots
			(run_id, cap_id, skill_id, target_level, coverage, headcount_target, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history: prepare coverage insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.CapID, r.SkillID, r.TargetLevel, r.Coverage, r.HeadcountTarget, at.UTC()); err != nil {
			return fmt.Errorf("history: insert coverage: %w", err)
		}
	}
	return tx.Commit()
}

// CoverageHistory returns the newest snapshots of one requirement first.
func (db *DB) CoverageHistory(ctx context.Context, capID, skillID string, limit int) ([]CoverageRow, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, cap_id, skill_id, target_level, coverage, headcount_target, created_at
		FROM coverage_snapshots
		WHERE cap_id = ? AND skill_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, capID, skillID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: coverage history: %w", err)
	}
	defer rows.Close()

	var out []CoverageRow
	for rows.Next() {
		var r CoverageRow
		if err := rows.Scan(&r.RunID, &r.CapID, &r.SkillID, &r.TargetLevel, &r.Coverage, &r.HeadcountTarget, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllChecksums returns the recorded checksum of every data file.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM data_files`)
	if err != nil {
		return nil, fmt.Errorf("history: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const maxLimit = 500

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return limit
}
