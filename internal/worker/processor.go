package worker

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/clipforge/video-export-backend/internal/videos"
	"github.com/clipforge/video-export-backend/pkg/logger"
	pkgErrors "github.com/pkg/errors"
)

// Processor drives a single export job through its state machine:
// pending -> processing -> completed|failed. Render failures are recorded on
// the job; only persistence failures propagate to the caller.
type Processor struct {
	exportRepo exports.Repository
	videoRepo  videos.Repository
	redisRepo  exports.RedisRepository
	renderer   exports.Renderer
	logger     logger.Logger
}

func NewProcessor(
	exportRepo exports.Repository,
	videoRepo videos.Repository,
	redisRepo exports.RedisRepository,
	renderer exports.Renderer,
	log logger.Logger,
) *Processor {
	return &Processor{
		exportRepo: exportRepo,
		videoRepo:  videoRepo,
		redisRepo:  redisRepo,
		renderer:   renderer,
		logger:     log,
	}
}

// ProcessJob claims the job, renders each requested output in order and
// finalizes the job status. Calling it on a job already in a terminal state
// is a no-op that reports the existing result.
func (p *Processor) ProcessJob(ctx context.Context, job *models.ExportJob) (*JobResult, error) {
	if job.Status.Terminal() {
		return terminalResult(job), nil
	}

	claimed, err := p.exportRepo.ClaimJob(ctx, job.JobID)
	if err != nil {
		if !pkgErrors.Is(err, sql.ErrNoRows) {
			return nil, pkgErrors.Wrapf(err, "failed to claim job %s", job.JobID)
		}
		// Claim lost: someone else moved the job. Report the current state
		// without touching it.
		current, getErr := p.exportRepo.GetJobByID(ctx, job.JobID)
		if getErr != nil {
			return nil, pkgErrors.Wrapf(getErr, "failed to re-fetch job %s after lost claim", job.JobID)
		}
		if current.Status.Terminal() {
			return terminalResult(current), nil
		}
		return &JobResult{
			JobID:   job.JobID,
			Skipped: true,
			Outputs: len(current.Outputs),
			Error:   "job already claimed by another worker",
		}, nil
	}
	job = claimed
	p.logger.Infof("Processing export job %s (%d outputs)", job.JobID, len(job.Outputs))

	video, err := p.videoRepo.GetVideoByID(ctx, job.VideoID)
	if err != nil {
		return p.failJob(ctx, job, fmt.Sprintf("source video %s unavailable: %v", job.VideoID, err))
	}

	total := len(job.Outputs)
	for i, output := range job.Outputs {
		res, renderErr := p.renderer.RenderOutput(ctx, video, &job.EditState, output)
		if renderErr != nil {
			// Fail fast: partial renditions are not useful to the caller.
			return p.failJob(ctx, job, fmt.Sprintf("output %s: %v", output.Filename, renderErr))
		}
		job.Outputs[i].ArtifactURL = res.ArtifactURL

		if i < total-1 {
			progress := ((i + 1) * 100) / total
			job.Progress = progress
			if err = p.exportRepo.UpdateJobStatus(ctx, job.JobID, &models.JobStatusUpdate{
				Status:   models.JobStatusProcessing,
				Progress: &progress,
			}); err != nil {
				return nil, pkgErrors.Wrapf(err, "failed to update progress for job %s", job.JobID)
			}
		}
	}

	if err = p.completeJob(ctx, job); err != nil {
		return nil, err
	}
	return &JobResult{
		JobID:   job.JobID,
		Success: true,
		Outputs: total,
	}, nil
}

func (p *Processor) completeJob(ctx context.Context, job *models.ExportJob) error {
	progress := 100
	now := nowUTC()
	if err := p.exportRepo.UpdateJobStatus(ctx, job.JobID, &models.JobStatusUpdate{
		Status:      models.JobStatusCompleted,
		Progress:    &progress,
		Outputs:     job.Outputs,
		CompletedAt: &now,
	}); err != nil {
		return pkgErrors.Wrapf(err, "failed to complete job %s", job.JobID)
	}
	job.Status = models.JobStatusCompleted
	job.Progress = progress
	job.CompletedAt = &now
	p.cacheJob(ctx, job)
	p.logger.Infof("Export job %s completed", job.JobID)
	return nil
}

func (p *Processor) failJob(ctx context.Context, job *models.ExportJob, reason string) (*JobResult, error) {
	now := nowUTC()
	if err := p.exportRepo.UpdateJobStatus(ctx, job.JobID, &models.JobStatusUpdate{
		Status:       models.JobStatusFailed,
		ErrorMessage: &reason,
		CompletedAt:  &now,
	}); err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to mark job %s as failed", job.JobID)
	}
	job.Status = models.JobStatusFailed
	job.ErrorMessage = reason
	job.CompletedAt = &now
	p.cacheJob(ctx, job)
	p.logger.Warnf("Export job %s failed: %s", job.JobID, reason)
	return &JobResult{
		JobID:   job.JobID,
		Success: false,
		Outputs: len(job.Outputs),
		Error:   reason,
	}, nil
}

func (p *Processor) cacheJob(ctx context.Context, job *models.ExportJob) {
	if err := p.redisRepo.CacheJob(ctx, job); err != nil {
		p.logger.Warnf("failed to cache job %s: %v", job.JobID, err)
	}
}

func terminalResult(job *models.ExportJob) *JobResult {
	return &JobResult{
		JobID:   job.JobID,
		Success: job.Status == models.JobStatusCompleted,
		Outputs: len(job.Outputs),
		Error:   job.ErrorMessage,
	}
}
