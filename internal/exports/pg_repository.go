package exports

import (
	"context"

	"github.com/clipforge/video-export-backend/internal/models"
)

type Repository interface {
	CreateJob(ctx context.Context, job *models.ExportJob) (*models.ExportJob, error)
	GetJobByID(ctx context.Context, jobID string) (*models.ExportJob, error)
	GetJobsByVideo(ctx context.Context, videoID, clientID string, limit int) ([]*models.ExportJob, error)
	FetchPendingJobs(ctx context.Context, limit int) ([]*models.ExportJob, error)
	CountPendingJobs(ctx context.Context) (int, error)
	ClaimJob(ctx context.Context, jobID string) (*models.ExportJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, update *models.JobStatusUpdate) error
}
