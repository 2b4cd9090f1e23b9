package match

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"georesolve/internal/logging"
)

// DefaultWorkers is the batch pool width when the config does not override it.
const DefaultWorkers = 5

// BatchResult is the output of one batch run.
type BatchResult struct {
	RunID   string
	Results []Result
	Stats   *Stats
	Elapsed time.Duration
}

// BatchMatch resolves all rows on a bounded worker pool. Each worker owns a
// session and a stats accumulator; results land in a slot per input index, so
// output order always mirrors input order. The batch runs to completion.
func (m *Matcher) BatchMatch(ctx context.Context, rows []Row, workers int) (*BatchResult, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(rows) && len(rows) > 0 {
		workers = len(rows)
	}

	runID := uuid.NewString()
	start := time.Now()
	m.logger.Info("batch match starting",
		logging.String("run_id", runID),
		logging.Int("rows", len(rows)),
		logging.Int("workers", workers))

	results := make([]Result, len(rows))
	merged := NewStats()

	if len(rows) == 0 {
		return &BatchResult{RunID: runID, Results: results, Stats: merged}, nil
	}

	pool := make([]*worker, 0, workers)
	for i := 0; i < workers; i++ {
		w, err := m.newWorker(ctx)
		if err != nil {
			for _, open := range pool {
				open.close()
			}
			return nil, err
		}
		pool = append(pool, w)
	}
	defer func() {
		for _, w := range pool {
			w.close()
		}
	}()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for _, w := range pool {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			for index := range jobs {
				results[index] = w.matchTriple(ctx, index, rows[index])
			}
		}(w)
	}

	for index := range rows {
		jobs <- index
	}
	close(jobs)
	wg.Wait()

	for _, w := range pool {
		merged.Merge(w.stats)
	}

	elapsed := time.Since(start)
	m.logger.Info("batch match complete",
		logging.String("run_id", runID),
		logging.Int("rows", len(rows)),
		logging.Int("matched", merged.SuccessfulMatches),
		logging.Duration("elapsed", elapsed))

	return &BatchResult{
		RunID:   runID,
		Results: results,
		Stats:   merged,
		Elapsed: elapsed,
	}, nil
}
