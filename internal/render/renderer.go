package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/highlight"
	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Renderer executes ffmpeg for each planned clip.
type Renderer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a Renderer.
func New(cfg *config.Config, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "render"),
	}
}

// RenderClip writes one vertical short realizing the plan's range order.
func (r *Renderer) RenderClip(ctx context.Context, sourcePath, outPath string, plan highlight.ClipPlan, hasAudio bool) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "rendering", "mkdir", "create output directory", err)
	}

	args := r.buildArgs(sourcePath, outPath, plan, hasAudio)
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("running ffmpeg", logging.String("output", outPath), logging.Int("ranges", len(plan.Ranges)))

	cmd := exec.CommandContext(ctx, r.cfg.FFmpegBinary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 2048 {
			detail = detail[len(detail)-2048:]
		}
		return services.Wrap(services.ErrExternalTool, "rendering", "ffmpeg",
			fmt.Sprintf("render %s: %s", filepath.Base(outPath), detail), err)
	}

	logger.Info("clip rendered",
		logging.String("output", outPath),
		logging.Float64("duration_sec", plan.Duration()))
	return nil
}

// buildArgs assembles the full ffmpeg argument list for a clip. The input is
// seeked to the segment start so graph trim offsets stay segment-relative.
func (r *Renderer) buildArgs(sourcePath, outPath string, plan highlight.ClipPlan, hasAudio bool) []string {
	seg := plan.Segment
	graph := BuildFilterGraph(GraphSpec{
		SegmentStart:   seg.Start,
		Ranges:         plan.Ranges,
		GameplayHeight: r.cfg.Layout.GameplayHeight,
		FacecamHeight:  r.cfg.Layout.FacecamHeight,
		GameTopCropPx:  r.cfg.Layout.GameTopCropPx,
		GameBottomCrop: r.cfg.Layout.GameBottomCrop,
		FaceWRatio:     r.cfg.FacecamCrop.WRatio,
		FaceHRatio:     r.cfg.FacecamCrop.HRatio,
		FaceXOffsetPx:  r.cfg.FacecamCrop.XOffsetPx,
		FaceYOffsetPx:  r.cfg.FacecamCrop.YOffsetPx,
		FPS:            r.cfg.Output.FPS,
		Sharpen:        r.cfg.Output.Sharpen,
		SharpenPreset:  r.cfg.Output.SharpenPreset,
		HasAudio:       hasAudio,
	})

	args := []string{
		"-y",
		"-ss", formatSeconds(seg.Start),
		"-t", formatSeconds(seg.Duration()),
		"-i", sourcePath,
		"-filter_complex", graph,
		"-map", "[v]",
	}
	if hasAudio {
		args = append(args, "-map", "[a]")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", r.cfg.Output.Preset,
		"-crf", strconv.Itoa(r.cfg.Output.CRF),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
	)
	if hasAudio {
		args = append(args,
			"-c:a", "aac",
			"-b:a", "160k",
			"-ar", "48000",
			"-ac", "2",
		)
	}
	args = append(args, "-shortest", outPath)
	return args
}

// OutputName returns the short_NN.mp4 filename for a clip index.
func OutputName(index int) string {
	return fmt.Sprintf("short_%02d.mp4", index)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
