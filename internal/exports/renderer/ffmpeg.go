package renderer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/clipforge/video-export-backend/internal/config"
	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/clipforge/video-export-backend/pkg/logger"
	pkgErrors "github.com/pkg/errors"
)

type ffmpegRenderer struct {
	cfg     *config.Config
	awsRepo exports.AWSRepository
	logger  logger.Logger
	tempDir string
}

// NewFFmpegRenderer builds the local rendering collaborator. It pulls the
// source over a presigned URL, runs ffmpeg and uploads the artifact to the
// output bucket.
func NewFFmpegRenderer(cfg *config.Config, awsRepo exports.AWSRepository, log logger.Logger) exports.Renderer {
	return &ffmpegRenderer{
		cfg:     cfg,
		awsRepo: awsRepo,
		logger:  log,
		tempDir: os.TempDir(),
	}
}

func (r *ffmpegRenderer) RenderOutput(ctx context.Context, video *models.VideoFile, state *models.EditState, output models.ExportOutput) (*exports.RenderResult, error) {
	inputURL, err := r.awsRepo.GetPresignedURL(ctx, video.S3Bucket, video.S3Key)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to presign source video")
	}

	workDir, err := os.MkdirTemp(r.tempDir, "export_")
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to create work directory")
	}
	defer os.RemoveAll(workDir)

	outPath := filepath.Join(workDir, output.Filename)
	args := buildFFmpegArgs(inputURL, outPath, state, output)

	r.logger.Debugf("Rendering %s: ffmpeg %s", output.Filename, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err = cmd.Run(); err != nil {
		return nil, pkgErrors.Wrapf(err, "ffmpeg failed: %s", tailLines(stderr.String(), 5))
	}

	artifact, err := os.Open(outPath)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to open rendered output")
	}
	defer artifact.Close()

	key := fmt.Sprintf("exports/%s/%s/%s", video.ClientID, video.VideoID, output.Filename)
	url, err := r.awsRepo.UploadArtifact(ctx, r.cfg.S3.OutputBucket, key, contentTypeFor(output.Format), artifact)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to upload artifact")
	}
	return &exports.RenderResult{ArtifactURL: url}, nil
}

func buildFFmpegArgs(inputURL, outPath string, state *models.EditState, output models.ExportOutput) []string {
	args := []string{"-i", inputURL}

	if t := state.Trim; t != nil {
		args = append(args,
			"-ss", fmt.Sprintf("%.3f", t.Start),
			"-to", fmt.Sprintf("%.3f", t.End),
		)
	}

	filters, outLabel := buildFilterGraph(state.Layers, output.Width, output.Height)
	args = append(args,
		"-filter_complex", filters,
		"-map", outLabel,
		"-map", "0:a?",
	)

	switch output.Format {
	case models.FormatWebM:
		args = append(args, "-c:v", "libvpx-vp9", "-crf", "32", "-b:v", "0", "-c:a", "libopus")
	default:
		args = append(args, "-c:v", "libx264", "-preset", "medium", "-crf", "23", "-c:a", "aac", "-b:a", "128k")
		if output.Format == models.FormatMP4 {
			args = append(args, "-movflags", "+faststart")
		}
	}
	args = append(args, "-y", outPath)
	return args
}

// buildFilterGraph scales/pads the source to the target frame, then stacks
// the overlay layers in z-order. Returns the graph and the final pad label.
func buildFilterGraph(layers []models.Layer, width, height int) (string, string) {
	var chains []string
	current := "[v0]"
	chains = append(chains, fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2%s",
		width, height, width, height, current,
	))

	for i, layer := range layers {
		next := fmt.Sprintf("[v%d]", i+1)
		x := paramString(layer.Params, "x", "0")
		y := paramString(layer.Params, "y", "0")

		switch layer.Type {
		case models.LayerTypeText:
			chains = append(chains, fmt.Sprintf(
				"%sdrawtext=text='%s':x=%s:y=%s:fontsize=%s:fontcolor=%s%s",
				current,
				escapeFilterText(paramString(layer.Params, "text", "")),
				x, y,
				paramString(layer.Params, "fontSize", "48"),
				paramString(layer.Params, "color", "white"),
				next,
			))
		case models.LayerTypeShape:
			chains = append(chains, fmt.Sprintf(
				"%sdrawbox=x=%s:y=%s:w=%s:h=%s:color=%s:t=fill%s",
				current, x, y,
				paramString(layer.Params, "width", "100"),
				paramString(layer.Params, "height", "100"),
				paramString(layer.Params, "color", "black"),
				next,
			))
		case models.LayerTypeImage:
			imgLabel := fmt.Sprintf("[img%d]", i)
			chains = append(chains, fmt.Sprintf(
				"movie='%s'%s;%s%soverlay=%s:%s%s",
				escapeFilterText(paramString(layer.Params, "src", "")),
				imgLabel, current, imgLabel, x, y, next,
			))
		default:
			continue
		}
		current = next
	}
	return strings.Join(chains, ";"), current
}

func paramString(params map[string]interface{}, key, fallback string) string {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	case int:
		return fmt.Sprintf("%d", val)
	default:
		return fallback
	}
}

func escapeFilterText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	return s
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func contentTypeFor(format models.OutputFormat) string {
	switch format {
	case models.FormatMOV:
		return "video/quicktime"
	case models.FormatWebM:
		return "video/webm"
	default:
		return "video/mp4"
	}
}
