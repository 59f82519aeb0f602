package repository

import (
	"context"
	"fmt"

	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

type exportRepo struct {
	db *sqlx.DB
}

func NewExportRepo(db *sqlx.DB) exports.Repository {
	return &exportRepo{
		db: db,
	}
}

func (r *exportRepo) CreateJob(ctx context.Context, job *models.ExportJob) (*models.ExportJob, error) {
	created := &models.ExportJob{}
	if err := r.db.QueryRowxContext(
		ctx,
		createJobQuery,
		job.JobID,
		job.VideoID,
		job.ClientID,
		job.EditState,
		job.Outputs,
		job.Status,
		job.Progress,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create export job: %w", err)
	}
	return created, nil
}

func (r *exportRepo) GetJobByID(ctx context.Context, jobID string) (*models.ExportJob, error) {
	job := &models.ExportJob{}
	if err := r.db.QueryRowxContext(
		ctx,
		getJobByIDQuery,
		jobID,
	).StructScan(job); err != nil {
		return nil, fmt.Errorf("failed to get export job by id: %w", err)
	}
	return job, nil
}

func (r *exportRepo) GetJobsByVideo(ctx context.Context, videoID, clientID string, limit int) ([]*models.ExportJob, error) {
	rows, err := r.db.QueryxContext(
		ctx,
		getJobsByVideoQuery,
		videoID,
		clientID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get export jobs by video: %w", err)
	}
	defer rows.Close()
	jobs := make([]*models.ExportJob, 0, limit)
	for rows.Next() {
		var job models.ExportJob
		if err = rows.StructScan(&job); err != nil {
			return nil, fmt.Errorf("failed to scan export job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan export jobs: %w", err)
	}
	return jobs, nil
}

func (r *exportRepo) FetchPendingJobs(ctx context.Context, limit int) ([]*models.ExportJob, error) {
	rows, err := r.db.QueryxContext(
		ctx,
		fetchPendingJobsQuery,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending jobs: %w", err)
	}
	defer rows.Close()
	jobs := make([]*models.ExportJob, 0, limit)
	for rows.Next() {
		var job models.ExportJob
		if err = rows.StructScan(&job); err != nil {
			return nil, fmt.Errorf("failed to scan pending job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan pending jobs: %w", err)
	}
	return jobs, nil
}

func (r *exportRepo) CountPendingJobs(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, countPendingJobsQuery); err != nil {
		return 0, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	return count, nil
}

// ClaimJob atomically moves a pending job to processing and stamps
// started_at. Returns sql.ErrNoRows when the job was already claimed or is
// no longer pending.
func (r *exportRepo) ClaimJob(ctx context.Context, jobID string) (*models.ExportJob, error) {
	job := &models.ExportJob{}
	if err := r.db.QueryRowxContext(
		ctx,
		claimJobQuery,
		jobID,
	).StructScan(job); err != nil {
		return nil, fmt.Errorf("failed to claim export job: %w", err)
	}
	return job, nil
}

func (r *exportRepo) UpdateJobStatus(ctx context.Context, jobID string, update *models.JobStatusUpdate) error {
	var outputsArg interface{}
	if update.Outputs != nil {
		outputsArg = update.Outputs
	}
	res, err := r.db.ExecContext(
		ctx,
		updateJobStatusQuery,
		jobID,
		update.Status,
		update.Progress,
		update.ErrorMessage,
		outputsArg,
		update.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update export job status: %w", err)
	}
	count, _ := res.RowsAffected()
	if count == 0 {
		return fmt.Errorf("no export job found to update")
	}
	return nil
}
