package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is final. Terminal jobs are never
// picked up or re-rendered.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type AspectRatio string

const (
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio4x5  AspectRatio = "4:5"
)

func (a AspectRatio) IsValid() bool {
	switch a {
	case AspectRatio16x9, AspectRatio9x16, AspectRatio1x1, AspectRatio4x5:
		return true
	}
	return false
}

type Resolution string

const (
	Resolution1080p Resolution = "1080p"
	Resolution720p  Resolution = "720p"
	Resolution480p  Resolution = "480p"
)

func (r Resolution) IsValid() bool {
	switch r {
	case Resolution1080p, Resolution720p, Resolution480p:
		return true
	}
	return false
}

type OutputFormat string

const (
	FormatMP4  OutputFormat = "mp4"
	FormatMOV  OutputFormat = "mov"
	FormatWebM OutputFormat = "webm"
)

func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatMP4, FormatMOV, FormatWebM:
		return true
	}
	return false
}

// OutputSettings is one requested rendition as submitted by the client.
type OutputSettings struct {
	AspectRatio AspectRatio  `json:"aspectRatio" validate:"required"`
	Resolution  Resolution   `json:"resolution" validate:"required"`
	Format      OutputFormat `json:"format" validate:"required"`
}

// ExportOutput is a rendition with its derived filename and dimensions,
// computed once at job creation time.
type ExportOutput struct {
	AspectRatio AspectRatio  `json:"aspectRatio"`
	Resolution  Resolution   `json:"resolution"`
	Format      OutputFormat `json:"format"`
	Filename    string       `json:"filename"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	ArtifactURL string       `json:"artifactUrl,omitempty"`
}

type OutputList []ExportOutput

func (o OutputList) Value() (driver.Value, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outputs: %w", err)
	}
	return b, nil
}

func (o *OutputList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return fmt.Errorf("unsupported outputs column type %T", src)
	}
}

// ExportJob is the persisted unit of work binding a source video, an edit
// state snapshot and the requested output set.
type ExportJob struct {
	JobID        string     `json:"id" db:"job_id" validate:"omitempty"`
	VideoID      string     `json:"videoId" db:"video_id" validate:"required"`
	ClientID     string     `json:"clientId" db:"client_id" validate:"required"`
	EditState    EditState  `json:"editState" db:"edit_state"`
	Outputs      OutputList `json:"outputs" db:"outputs"`
	Status       JobStatus  `json:"status" db:"status"`
	Progress     int        `json:"progress" db:"progress"`
	ErrorMessage string     `json:"error,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	StartedAt    *time.Time `json:"startedAt,omitempty" db:"started_at"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" db:"completed_at"`
}

// JobStatusUpdate is a partial single-row update of a job record. Nil
// pointer fields are left unchanged.
type JobStatusUpdate struct {
	Status       JobStatus
	Progress     *int
	ErrorMessage *string
	Outputs      OutputList
	CompletedAt  *time.Time
}

// CreateExportInput is the create-export request body.
type CreateExportInput struct {
	EditState     *EditState       `json:"editState" validate:"required"`
	Outputs       []OutputSettings `json:"outputs" validate:"required,min=1,dive"`
	ClientID      string           `json:"clientId" validate:"required"`
	NamingPattern string           `json:"namingPattern"`
}

// ExportJobList is the list-exports-for-video response.
type ExportJobList struct {
	VideoID string       `json:"videoId"`
	Jobs    []*ExportJob `json:"jobs"`
}

// CreatedExport is the create-export response payload.
type CreatedExport struct {
	ExportID string     `json:"exportId"`
	Outputs  OutputList `json:"outputs"`
	Status   JobStatus  `json:"status"`
}
