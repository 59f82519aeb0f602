package repository

import (
	"context"
	"fmt"

	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/clipforge/video-export-backend/internal/videos"
	"github.com/jmoiron/sqlx"
)

type videoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) videos.Repository {
	return &videoRepo{
		db: db,
	}
}

func (v *videoRepo) GetVideoByID(ctx context.Context, videoID string) (*models.VideoFile, error) {
	video := &models.VideoFile{}
	if err := v.db.QueryRowxContext(
		ctx,
		getVideoByIDQuery,
		videoID,
	).StructScan(video); err != nil {
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}
	return video, nil
}
