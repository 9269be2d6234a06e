package bulksync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"watchdeck/models"
)

var ErrItemsFailed = errors.New("some items failed")

const (
	DefaultBatchSize       = 4
	DefaultInterBatchDelay = 500 * time.Millisecond
)

// EpisodeFetcher is the slice of the catalog client the engine calls per
// item. Every call carries the client's own timeout; a timeout is a per-item
// failure, never a job failure.
type EpisodeFetcher interface {
	FetchEpisode(ctx context.Context, showID, season, episode int) (models.Release, error)
}

// InteractionWriter applies the watched-state mutation for one item.
type InteractionWriter interface {
	SetWatched(userID string, ref models.InteractionRef, watched bool) (models.Interaction, error)
}

// ProgressFunc receives (itemsProcessedSoFar, total) after every batch.
type ProgressFunc func(current, total int)

// Result is the per-job outcome. Applied mutations are never rolled back on
// partial failure; the counts tell the caller exactly what landed.
type Result struct {
	Succeeded int
	Failed    int
}

// Engine applies large sets of watched-state mutations under a flat pacing
// cap: fixed-size batches run sequentially, items within a batch run
// concurrently, and a constant delay separates batches. The delay is pacing
// for the upstream API, not a backoff.
type Engine struct {
	catalog      EpisodeFetcher
	interactions InteractionWriter
	batchSize    int
	delay        time.Duration
}

func NewEngine(catalog EpisodeFetcher, interactions InteractionWriter, batchSize int, delay time.Duration) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if delay <= 0 {
		delay = DefaultInterBatchDelay
	}
	return &Engine{
		catalog:      catalog,
		interactions: interactions,
		batchSize:    batchSize,
		delay:        delay,
	}
}

func (e *Engine) BatchSize() int       { return e.batchSize }
func (e *Engine) Delay() time.Duration { return e.delay }

// Run processes the items and reports progress after every batch. Progress is
// monotonically non-decreasing and reaches len(items) exactly once. A failed
// item is logged and counted; the batch and the job continue. Cancellation is
// observed between batches only; in-flight calls are left to finish.
// Returns ErrItemsFailed when any item failed.
func (e *Engine) Run(ctx context.Context, userID string, items []models.WorkItem, onProgress ProgressFunc) (Result, error) {
	total := len(items)
	if total == 0 {
		if onProgress != nil {
			onProgress(0, 0)
		}
		return Result{}, nil
	}

	var (
		result    Result
		resultMu  sync.Mutex
		processed int
	)

	for start := 0; start < total; start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + e.batchSize
		if end > total {
			end = total
		}
		batch := items[start:end]

		var wg conc.WaitGroup
		for _, item := range batch {
			item := item
			wg.Go(func() {
				err := e.applyItem(ctx, userID, item)
				resultMu.Lock()
				if err != nil {
					result.Failed++
					log.Printf("[bulksync] item failed (show %d S%dE%d): %v", item.ShowID, item.SeasonNumber, item.EpisodeNumber, err)
				} else {
					result.Succeeded++
				}
				resultMu.Unlock()
			})
		}
		wg.Wait()

		processed = end
		if onProgress != nil {
			onProgress(processed, total)
		}

		if end >= total {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(e.delay):
		}
	}

	if result.Failed > 0 {
		return result, ErrItemsFailed
	}
	return result, nil
}

// applyItem verifies the episode against the catalog, then writes the
// watched state. Movies have no per-episode metadata to verify and go
// straight to the store.
func (e *Engine) applyItem(ctx context.Context, userID string, item models.WorkItem) error {
	if !item.IsMovie && e.catalog != nil {
		if _, err := e.catalog.FetchEpisode(ctx, item.ShowID, item.SeasonNumber, item.EpisodeNumber); err != nil {
			return err
		}
	}
	_, err := e.interactions.SetWatched(userID, item.Ref(), item.Watched)
	return err
}
