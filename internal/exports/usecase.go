package exports

import (
	"context"

	"github.com/clipforge/video-export-backend/internal/models"
)

type UseCase interface {
	CreateExport(ctx context.Context, videoID string, input *models.CreateExportInput) (*models.CreatedExport, error)
	GetExport(ctx context.Context, jobID, clientID string) (*models.ExportJob, error)
	ListExports(ctx context.Context, videoID, clientID string, limit int) (*models.ExportJobList, error)
}
