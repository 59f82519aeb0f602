package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/go-redis/redis/v8"
)

type exportRedisRepo struct {
	redisClient *redis.Client
	prefix      string
	expire      time.Duration
}

func NewExportRedisRepo(redisClient *redis.Client, prefix string, expire time.Duration) exports.RedisRepository {
	return &exportRedisRepo{
		redisClient: redisClient,
		prefix:      prefix,
		expire:      expire,
	}
}

func (r *exportRedisRepo) CacheJob(ctx context.Context, job *models.ExportJob) error {
	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job for cache: %w", err)
	}
	if err = r.redisClient.Set(ctx, r.prefix+job.JobID, jobData, r.expire).Err(); err != nil {
		return fmt.Errorf("failed to cache job: %w", err)
	}
	return nil
}

func (r *exportRedisRepo) GetJobByID(ctx context.Context, jobID string) (*models.ExportJob, error) {
	jobData, err := r.redisClient.Get(ctx, r.prefix+jobID).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to get cached job: %w", err)
	}
	job := &models.ExportJob{}
	if err = json.Unmarshal(jobData, job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached job: %w", err)
	}
	return job, nil
}

func (r *exportRedisRepo) DeleteJob(ctx context.Context, jobID string) error {
	if err := r.redisClient.Del(ctx, r.prefix+jobID).Err(); err != nil {
		return fmt.Errorf("failed to delete cached job: %w", err)
	}
	return nil
}
