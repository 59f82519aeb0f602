package exports

import (
	"context"

	"github.com/clipforge/video-export-backend/internal/models"
)

// RedisRepository caches job records for the polling read path. Postgres
// stays authoritative; cache misses and cache errors fall through to it.
type RedisRepository interface {
	CacheJob(ctx context.Context, job *models.ExportJob) error
	GetJobByID(ctx context.Context, jobID string) (*models.ExportJob, error)
	DeleteJob(ctx context.Context, jobID string) error
}
