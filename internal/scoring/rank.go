package scoring

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

// Rank orders rows by readiness (highest first), then risk, time-to-readiness
// and name ascending. The sort is in place and the slice is returned.
func Rank(rows []models.GapMetrics) []models.GapMetrics {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Readiness != b.Readiness {
			return a.Readiness > b.Readiness
		}
		if a.Risk != b.Risk {
			return a.Risk < b.Risk
		}
		if a.TTRMonths != b.TTRMonths {
			return a.TTRMonths < b.TTRMonths
		}
		return a.Name < b.Name
	})
	return rows
}

// Request describes one requirement to evaluate across a roster.
type Request struct {
	SkillID        string
	Target         level.Level
	Catalog        *models.SkillCatalog
	DeadlineMonths float64
}

// ScoreAll evaluates every employee against req in parallel, using at most
// workers goroutines (unbounded when workers <= 0). Results keep roster order.
// Cancelling ctx stops work between employees.
func ScoreAll(ctx context.Context, employees []models.Employee, req Request, workers int) ([]models.GapMetrics, error) {
	out := make([]models.GapMetrics, len(employees))

	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, emp := range employees {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			out[i] = Score(emp, req.SkillID, req.Target, req.Catalog, req.DeadlineMonths)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Candidates scores and ranks the roster for one requirement.
func Candidates(ctx context.Context, employees []models.Employee, req Request, workers int) ([]models.GapMetrics, error) {
	rows, err := ScoreAll(ctx, employees, req, workers)
	if err != nil {
		return nil, err
	}
	return Rank(rows), nil
}
