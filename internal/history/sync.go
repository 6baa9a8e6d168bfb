package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Sync brings the data_files table in line with current, a map of data file
// path to checksum, and returns the paths that were added, changed or
// removed since the last sync, sorted.
func (db *DB) Sync(ctx context.Context, current map[string]string, logger *slog.Logger) ([]string, error) {
	recorded, err := db.AllChecksums(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var changed []string
	for p, cs := range current {
		if recorded[p] == cs {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO data_files (path, checksum, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(path) DO UPDATE SET checksum = excluded.checksum, updated_at = excluded.updated_at`,
			p, cs); err != nil {
			return nil, fmt.Errorf("history: upsert data file: %w", err)
		}
		logger.Debug("sync: changed", slog.String("path", p))
		changed = append(changed, p)
	}

	for p := range recorded {
		if _, ok := current[p]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM data_files WHERE path = ?`, p); err != nil {
			return nil, fmt.Errorf("history: delete data file: %w", err)
		}
		logger.Debug("sync: removed", slog.String("path", p))
		changed = append(changed, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("history: commit sync: %w", err)
	}
	sort.Strings(changed)
	return changed, nil
}
