package models

import "time"

type VideoStatus string

const (
	VideoStatusUploading  VideoStatus = "uploading"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusSucceeded  VideoStatus = "succeeded"
	VideoStatusFailed     VideoStatus = "failed"
)

// VideoFile is a source video. Exports may only be created against a video
// whose processing has finished.
type VideoFile struct {
	VideoID   string      `json:"videoId" db:"video_id"`
	ClientID  string      `json:"clientId" db:"client_id"`
	FileName  string      `json:"fileName" db:"file_name"`
	S3Key     string      `json:"s3Key" db:"s3_key"`
	S3Bucket  string      `json:"s3Bucket" db:"s3_bucket"`
	Format    string      `json:"format" db:"format"`
	Duration  float64     `json:"duration" db:"duration"`
	Status    VideoStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// Ready reports whether the source video can be exported.
func (v *VideoFile) Ready() bool {
	return v.Status == VideoStatusCompleted || v.Status == VideoStatusSucceeded
}
