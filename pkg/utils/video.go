package utils

import (
	"strings"

	"github.com/clipforge/video-export-backend/internal/models"
)

// dimensionTable maps (resolution, aspect ratio) to output width x height.
// The nominal resolution is the short side; the long side follows the aspect
// ratio, rounded to an even pixel count for encoder compatibility.
var dimensionTable = map[models.Resolution]map[models.AspectRatio][2]int{
	models.Resolution1080p: {
		models.AspectRatio16x9: {1920, 1080},
		models.AspectRatio9x16: {1080, 1920},
		models.AspectRatio1x1:  {1080, 1080},
		models.AspectRatio4x5:  {864, 1080},
	},
	models.Resolution720p: {
		models.AspectRatio16x9: {1280, 720},
		models.AspectRatio9x16: {720, 1280},
		models.AspectRatio1x1:  {720, 720},
		models.AspectRatio4x5:  {576, 720},
	},
	models.Resolution480p: {
		models.AspectRatio16x9: {854, 480},
		models.AspectRatio9x16: {480, 854},
		models.AspectRatio1x1:  {480, 480},
		models.AspectRatio4x5:  {384, 480},
	},
}

// OutputDimensions returns the pixel dimensions for a resolution and aspect
// ratio pair, or (0, 0) when the pair is outside the supported sets.
func OutputDimensions(resolution models.Resolution, aspect models.AspectRatio) (int, int) {
	dims, ok := dimensionTable[resolution][aspect]
	if !ok {
		return 0, 0
	}
	return dims[0], dims[1]
}

// BuildOutputFilename substitutes the naming pattern placeholders and appends
// the format extension. The same inputs always produce the same filename.
func BuildOutputFilename(pattern, clientID, videoID string, settings models.OutputSettings) string {
	name := strings.NewReplacer(
		"{clientId}", clientID,
		"{videoId}", videoID,
		"{aspectRatio}", string(settings.AspectRatio),
		"{resolution}", string(settings.Resolution),
	).Replace(pattern)
	return name + "." + string(settings.Format)
}
