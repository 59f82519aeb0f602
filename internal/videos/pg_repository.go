package videos

import (
	"context"

	"github.com/clipforge/video-export-backend/internal/models"
)

type Repository interface {
	GetVideoByID(ctx context.Context, videoID string) (*models.VideoFile, error)
}
