package history

import (
	"context"
	"log/slog"
	"time"
)

// Recorder defines the history operations consumers depend on.
type Recorder interface {
	RecordRevision(ctx context.Context, r Revision) error
	Revisions(ctx context.Context, limit int) ([]Revision, error)
	RecordCall(ctx context.Context, purpose, status, errMsg string, took time.Duration) error
	Calls(ctx context.Context, limit int) ([]Call, error)
	RecordCoverage(ctx context.Context, runID string, at time.Time, rows []CoverageRow) error
	CoverageHistory(ctx context.Context, capID, skillID string, limit int) ([]CoverageRow, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
	Sync(ctx context.Context, current map[string]string, logger *slog.Logger) ([]string, error)
	Close() error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)
