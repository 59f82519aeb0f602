package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clipforge/video-export-backend/internal/config"
	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/clipforge/video-export-backend/pkg/logger"
	"github.com/clipforge/video-export-backend/pkg/utils"
)

// Runner drives a bounded batch of pending export jobs per invocation.
// Jobs are fetched oldest-first and processed on a small worker pool; one
// job's failure or panic never aborts the rest of the batch.
type Runner struct {
	cfg        *config.Config
	exportRepo exports.Repository
	processor  *Processor
	logger     logger.Logger
}

func NewRunner(cfg *config.Config, exportRepo exports.Repository, processor *Processor, log logger.Logger) *Runner {
	return &Runner{
		cfg:        cfg,
		exportRepo: exportRepo,
		processor:  processor,
		logger:     log,
	}
}

// ProcessPending fetches up to limit pending jobs and processes them.
// The limit is clamped to the configured batch cap so one trigger invocation
// stays inside its wall-clock budget.
func (r *Runner) ProcessPending(ctx context.Context, limit int) (*BatchResult, error) {
	limit = utils.ClampLimit(limit, r.cfg.Export.MaxBatchSize)

	if r.cfg.Worker.MaxCPUUsage > 0 {
		if canAccept, usage := utils.CheckCPUUsage(r.cfg.Worker.MaxCPUUsage); !canAccept {
			r.logger.Warnf("CPU usage is high (%.2f%%), skipping batch", usage)
			return &BatchResult{Results: []JobResult{}}, nil
		}
	}

	jobs, err := r.exportRepo.FetchPendingJobs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		return &BatchResult{Results: []JobResult{}}, nil
	}
	r.logger.Infof("Processing batch of %d pending export jobs", len(jobs))

	sem := make(chan struct{}, r.cfg.Worker.WorkerCount)
	var wg sync.WaitGroup
	results := make([]JobResult, len(jobs))

	for i, job := range jobs {
		sem <- struct{}{}
		wg.Add(1)

		go func(idx int, job *models.ExportJob) {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Errorf("panic while processing job %s: %v", job.JobID, rec)
					results[idx] = JobResult{
						JobID:   job.JobID,
						Success: false,
						Outputs: len(job.Outputs),
						Error:   fmt.Sprintf("internal error: %v", rec),
					}
				}
				<-sem
				wg.Done()
			}()

			res, procErr := r.processor.ProcessJob(ctx, job)
			if procErr != nil {
				r.logger.Errorf("error processing job %s: %v", job.JobID, procErr)
				results[idx] = JobResult{
					JobID:   job.JobID,
					Success: false,
					Outputs: len(job.Outputs),
					Error:   procErr.Error(),
				}
				return
			}
			results[idx] = *res
		}(i, job)
	}
	wg.Wait()

	batch := &BatchResult{Results: results}
	for _, res := range results {
		if res.Skipped {
			batch.Skipped++
			continue
		}
		batch.Processed++
		if res.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	r.logger.Infof("Batch done: processed=%d succeeded=%d failed=%d skipped=%d", batch.Processed, batch.Succeeded, batch.Failed, batch.Skipped)
	return batch, nil
}

// PendingCount returns the exact number of jobs waiting in the queue.
func (r *Runner) PendingCount(ctx context.Context) (int, error) {
	return r.exportRepo.CountPendingJobs(ctx)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
