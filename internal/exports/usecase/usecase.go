package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clipforge/video-export-backend/internal/config"
	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/clipforge/video-export-backend/internal/videos"
	"github.com/clipforge/video-export-backend/pkg/logger"
	"github.com/clipforge/video-export-backend/pkg/utils"
	"github.com/google/uuid"
)

type exportUC struct {
	cfg        *config.Config
	exportRepo exports.Repository
	videoRepo  videos.Repository
	redisRepo  exports.RedisRepository
	logger     logger.Logger
}

func NewExportUseCase(
	cfg *config.Config,
	exportRepo exports.Repository,
	videoRepo videos.Repository,
	redisRepo exports.RedisRepository,
	log logger.Logger,
) exports.UseCase {
	return &exportUC{
		cfg:        cfg,
		exportRepo: exportRepo,
		videoRepo:  videoRepo,
		redisRepo:  redisRepo,
		logger:     log,
	}
}

func (u *exportUC) CreateExport(ctx context.Context, videoID string, input *models.CreateExportInput) (*models.CreatedExport, error) {
	if input == nil {
		return nil, exports.NewValidationError("request body is required")
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("CreateExport - ValidateStruct error: %v", err)
		return nil, exports.NewValidationError(fmt.Sprintf("invalid request: %v", err))
	}

	video, err := u.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			u.logger.Warnf("CreateExport - video not found: %s", videoID)
			return nil, exports.ErrVideoNotFound
		}
		u.logger.Errorf("CreateExport - GetVideoByID error: %v", err)
		return nil, fmt.Errorf("failed to fetch video: %v", err)
	}
	if video.ClientID != input.ClientID {
		u.logger.Warnf("CreateExport - client %s does not own video %s", input.ClientID, videoID)
		return nil, exports.ErrVideoNotFound
	}
	if !video.Ready() {
		return nil, exports.ErrVideoNotReady
	}

	reasons := models.ValidateEditState(input.EditState, video.Duration)
	for i, settings := range input.Outputs {
		if !settings.AspectRatio.IsValid() {
			reasons = append(reasons, fmt.Sprintf("output %d: unsupported aspect ratio %q", i, settings.AspectRatio))
		}
		if !settings.Resolution.IsValid() {
			reasons = append(reasons, fmt.Sprintf("output %d: unsupported resolution %q", i, settings.Resolution))
		}
		if !settings.Format.IsValid() {
			reasons = append(reasons, fmt.Sprintf("output %d: unsupported format %q", i, settings.Format))
		}
	}
	if len(reasons) > 0 {
		return nil, &exports.ValidationError{Reasons: reasons}
	}

	pattern := input.NamingPattern
	if pattern == "" {
		pattern = u.cfg.Export.NamingPattern
	}
	outputs := buildOutputs(pattern, input.ClientID, videoID, input.Outputs)

	job := &models.ExportJob{
		JobID:     uuid.New().String(),
		VideoID:   videoID,
		ClientID:  input.ClientID,
		EditState: *input.EditState,
		Outputs:   outputs,
		Status:    models.JobStatusPending,
		Progress:  0,
	}
	created, err := u.exportRepo.CreateJob(ctx, job)
	if err != nil {
		u.logger.Errorf("CreateExport - CreateJob error: %v", err)
		return nil, fmt.Errorf("failed to create export job: %v", err)
	}
	if err = u.redisRepo.CacheJob(ctx, created); err != nil {
		u.logger.Warnf("CreateExport - CacheJob error: %v", err)
	}
	u.logger.Infof("Created export job %s for video %s with %d outputs", created.JobID, videoID, len(created.Outputs))

	return &models.CreatedExport{
		ExportID: created.JobID,
		Outputs:  created.Outputs,
		Status:   created.Status,
	}, nil
}

// buildOutputs de-duplicates the requested renditions by (aspectRatio,
// resolution) pair, keeping first-seen order, then derives dimensions and a
// filename for each survivor. Deterministic for a given naming pattern.
func buildOutputs(pattern, clientID, videoID string, requested []models.OutputSettings) models.OutputList {
	type pair struct {
		aspect     models.AspectRatio
		resolution models.Resolution
	}
	seen := make(map[pair]bool, len(requested))
	outputs := make(models.OutputList, 0, len(requested))
	for _, settings := range requested {
		p := pair{settings.AspectRatio, settings.Resolution}
		if seen[p] {
			continue
		}
		seen[p] = true
		width, height := utils.OutputDimensions(settings.Resolution, settings.AspectRatio)
		outputs = append(outputs, models.ExportOutput{
			AspectRatio: settings.AspectRatio,
			Resolution:  settings.Resolution,
			Format:      settings.Format,
			Filename:    utils.BuildOutputFilename(pattern, clientID, videoID, settings),
			Width:       width,
			Height:      height,
		})
	}
	return outputs
}

func (u *exportUC) GetExport(ctx context.Context, jobID, clientID string) (*models.ExportJob, error) {
	if jobID == "" {
		return nil, exports.ErrJobNotFound
	}
	job, err := u.redisRepo.GetJobByID(ctx, jobID)
	if err != nil {
		job, err = u.exportRepo.GetJobByID(ctx, jobID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, exports.ErrJobNotFound
			}
			u.logger.Errorf("GetExport - GetJobByID error: %v", err)
			return nil, fmt.Errorf("failed to fetch export job: %v", err)
		}
		if cacheErr := u.redisRepo.CacheJob(ctx, job); cacheErr != nil {
			u.logger.Warnf("GetExport - CacheJob error: %v", cacheErr)
		}
	}
	if job.ClientID != clientID {
		u.logger.Warnf("GetExport - client %s does not own job %s", clientID, jobID)
		return nil, exports.ErrJobNotFound
	}
	return job, nil
}

func (u *exportUC) ListExports(ctx context.Context, videoID, clientID string, limit int) (*models.ExportJobList, error) {
	if videoID == "" || clientID == "" {
		return nil, exports.NewValidationError("videoId and clientId are required")
	}
	jobs, err := u.exportRepo.GetJobsByVideo(ctx, videoID, clientID, utils.ClampLimit(limit, u.cfg.Export.PageSize))
	if err != nil {
		u.logger.Errorf("ListExports - GetJobsByVideo error: %v", err)
		return nil, fmt.Errorf("failed to fetch export jobs: %v", err)
	}
	return &models.ExportJobList{
		VideoID: videoID,
		Jobs:    jobs,
	}, nil
}
