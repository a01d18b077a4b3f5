package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/connector/internal/checkpoint"
	"github.com/BartekS5/connector/internal/metrics"
	"github.com/BartekS5/connector/pkg/logger"
)

// Pipeline runs the extract→load loop for one endpoint. Cursors are
// committed to the checkpoint store after each loaded batch, so an
// interrupted run resumes from the last completed page; a finished run
// clears its cursor.
type Pipeline struct {
	Extractor   Extractor
	Loader      Loader
	Checkpoints checkpoint.Store
	Counter     metrics.Counter

	Connector string
	Endpoint  string
	BatchSize int
	Limit     int // max records this run; 0 = unlimited
	DryRun    bool
}

func (p *Pipeline) Run(ctx context.Context) error {
	counter := p.Counter
	if counter == nil {
		counter = metrics.Noop()
	}
	store := p.Checkpoints
	if store == nil {
		store = checkpoint.NewMemory()
	}

	cursor, err := store.Get(p.Connector, p.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to read checkpoint for %s/%s: %w", p.Connector, p.Endpoint, err)
	}
	if cursor != "" {
		logger.Infof("[%s] Resuming from checkpoint cursor %q", p.Endpoint, cursor)
	}

	logger.Infof("[%s] Starting pipeline. Batch Size: %d, Limit: %d, DryRun: %v", p.Endpoint, p.BatchSize, p.Limit, p.DryRun)

	totalProcessed := 0
	startTime := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batchSize := p.BatchSize
		if p.Limit > 0 && p.Limit-totalProcessed < batchSize {
			batchSize = p.Limit - totalProcessed
		}

		data, next, err := p.Extractor.Extract(ctx, batchSize, cursor)
		if err != nil {
			logger.Errorf("[%s] Extraction failed at cursor %q: %v", p.Endpoint, cursor, err)
			return err
		}
		counter.Add(metrics.PagesFetched, 1)

		count := len(data)
		if count == 0 {
			if !p.DryRun {
				if err := store.Clear(p.Connector, p.Endpoint); err != nil {
					logger.Warnf("[%s] Failed to clear checkpoint: %v", p.Endpoint, err)
				}
			}
			logger.Infof("[%s] No more data to process.", p.Endpoint)
			break
		}
		counter.Add(metrics.RecordsExtracted, int64(count))

		if p.DryRun {
			logger.Infof("[%s] [DRY RUN] Would load %d records", p.Endpoint, count)
		} else {
			if err := p.Loader.Load(ctx, data); err != nil {
				logger.Errorf("[%s] Loading failed at cursor %q: %v", p.Endpoint, cursor, err)
				return err
			}
			counter.Add(metrics.RecordsLoaded, int64(count))
		}

		totalProcessed += count
		cursor = next

		if !p.DryRun && next != "" {
			if err := store.Set(p.Connector, p.Endpoint, next); err != nil {
				logger.Warnf("[%s] Failed to save checkpoint: %v", p.Endpoint, err)
			}
		}

		duration := time.Since(startTime)
		rate := 0.0
		if duration.Seconds() > 0 {
			rate = float64(totalProcessed) / duration.Seconds()
		}
		logger.Infof("[%s] Batch done. Total: %d. Rate: %.2f docs/sec.", p.Endpoint, totalProcessed, rate)

		if next == "" {
			if !p.DryRun {
				if err := store.Clear(p.Connector, p.Endpoint); err != nil {
					logger.Warnf("[%s] Failed to clear checkpoint: %v", p.Endpoint, err)
				}
			}
			break
		}
		if p.Limit > 0 && totalProcessed >= p.Limit {
			logger.Infof("[%s] Record limit reached (%d); cursor saved for next run.", p.Endpoint, p.Limit)
			break
		}
	}

	logger.Infof("[%s] Pipeline finished. Processed %d records.", p.Endpoint, totalProcessed)
	return nil
}
