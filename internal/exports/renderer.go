package exports

import (
	"context"

	"github.com/clipforge/video-export-backend/internal/models"
)

// RenderResult is what the rendering collaborator hands back for one output.
type RenderResult struct {
	ArtifactURL string
}

// Renderer transcodes one requested rendition of a source video. Calls are
// slow (seconds to minutes) and must be awaited one at a time per job.
// Implementations enforce their own timeouts and report them as errors.
type Renderer interface {
	RenderOutput(ctx context.Context, video *models.VideoFile, state *models.EditState, output models.ExportOutput) (*RenderResult, error)
}
