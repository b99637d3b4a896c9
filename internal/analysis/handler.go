package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/highlight"
	"clipforge/internal/logging"
	"clipforge/internal/media/audio"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/media/motion"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
)

const stageName = "analyzing"

// Handler runs highlight analysis for one queue item.
type Handler struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewHandler constructs the analysis stage handler.
func NewHandler(cfg *config.Config, logger *slog.Logger, notifier notifications.Service) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Handler{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "analysis"),
		notifier: notifier,
	}
}

// Prepare probes the source recording and validates it is analyzable.
func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	if _, err := os.Stat(item.SourcePath); err != nil {
		return services.Wrap(services.ErrNotFound, stageName, "stat",
			fmt.Sprintf("source file missing: %s", item.SourcePath), err)
	}

	probe, err := ffprobe.Inspect(ctx, h.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "ffprobe",
			"probe source recording", err)
	}
	if probe.VideoStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, stageName, "ffprobe",
			"source has no video stream", nil)
	}
	if !probe.HasAudio() {
		return services.Wrap(services.ErrValidation, stageName, "ffprobe",
			"source has no audio stream; nothing to analyze", nil)
	}

	duration := probe.DurationSeconds()
	if duration <= 0 {
		return services.Wrap(services.ErrValidation, stageName, "ffprobe",
			"source duration is unknown or zero", nil)
	}
	if duration < h.cfg.Clips.MinClipSec {
		return services.Wrap(services.ErrValidation, stageName, "ffprobe",
			fmt.Sprintf("source is %.1fs, shorter than the minimum clip length %.1fs",
				duration, h.cfg.Clips.MinClipSec), nil)
	}

	item.DurationSec = duration
	item.SetProgress("Analyzing", "Source probed", 5)
	return nil
}

// Execute builds the fused envelope, scans for highlights, filters dull
// segments, and stores the clip plan on the item.
func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	opts := h.cfg.HighlightOptions()
	hop := h.cfg.HopSeconds()
	log := logging.WithContext(ctx, h.logger)

	item.SetProgress("Analyzing", "Extracting audio envelope", 10)
	rms, err := audio.ExtractRMS(ctx, h.cfg.FFmpegBinary(), item.SourcePath, h.cfg.Audio.SampleRate, hop)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, stageName, "ffmpeg",
			"extract audio envelope", err)
	}

	var motionSeries []float64
	if h.cfg.FaceMotion.Enabled {
		item.SetProgress("Analyzing", "Sampling facecam motion", 30)
		motionSeries, err = motion.ExtractFacecamMotion(ctx, h.cfg.FFmpegBinary(), item.SourcePath,
			h.cfg.FacecamCrop.WRatio, h.cfg.FacecamCrop.HRatio,
			h.cfg.FaceMotion.SampleFPS, hop, item.DurationSec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("facecam motion sampling failed, continuing audio-only", logging.Error(err))
			motionSeries = nil
		}
	}

	env, err := highlight.BuildEnvelope(rms, motionSeries, hop, opts)
	if err != nil {
		return services.Wrap(classify(err), stageName, "envelope", "build energy envelope", err)
	}

	item.SetProgress("Analyzing", "Scanning for highlights", 50)
	result, err := highlight.Analyze(ctx, env, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return services.Wrap(classify(err), stageName, "scan", "analyze energy envelope", err)
	}

	kept := result.Plans
	dropped := 0
	if len(kept) > 0 && (h.cfg.BoringFilter.DetectFreeze || h.cfg.BoringFilter.DetectScene) {
		item.SetProgress("Analyzing", "Filtering dull segments", 75)
		kept, dropped = h.filterBoring(ctx, log, item.SourcePath, kept)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if len(kept) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "selection",
			"no segments met the clip criteria", nil)
	}

	report := Report{
		DurationSec:   item.DurationSec,
		HasAudio:      true,
		Threshold:     result.Threshold,
		Plans:         kept,
		DroppedBoring: dropped,
	}
	encoded, err := report.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, stageName, "report", "store clip plan", err)
	}
	item.PlanJSON = encoded
	item.SetProgress("Analyzing", fmt.Sprintf("%d clips planned", len(kept)), 100)

	log.Info("analysis complete",
		logging.Int("segments", len(result.Segments)),
		logging.Int("clips", len(kept)),
		logging.Int("dropped_boring", dropped),
		logging.Float64("threshold", result.Threshold),
	)

	if err := h.notifier.NotifyAnalysisComplete(ctx, item.Title, len(kept)); err != nil {
		log.Warn("analysis notification failed", logging.Error(err))
	}
	return nil
}

// filterBoring drops plans whose segments are dominated by frozen video or
// show too little scene movement. Detection runs once over the whole source;
// a detection failure skips the filter rather than failing the stage.
func (h *Handler) filterBoring(ctx context.Context, log *slog.Logger, sourcePath string, plans []highlight.ClipPlan) ([]highlight.ClipPlan, int) {
	bf := h.cfg.BoringFilter

	var freezes []motion.Interval
	if bf.DetectFreeze {
		detected, err := motion.DetectFreezes(ctx, h.cfg.FFmpegBinary(), sourcePath,
			bf.FreezeFPS, bf.FreezeNoise, bf.FreezeMinDurSec)
		if err != nil {
			log.Warn("freeze detection failed, skipping freeze filter", logging.Error(err))
		} else {
			freezes = detected
		}
	}

	var scenes []float64
	sceneUsable := false
	if bf.DetectScene {
		detected, err := motion.DetectSceneChanges(ctx, h.cfg.FFmpegBinary(), sourcePath,
			bf.SceneFPS, bf.SceneThreshold)
		if err != nil {
			log.Warn("scene detection failed, skipping scene filter", logging.Error(err))
		} else {
			scenes = detected
			sceneUsable = true
		}
	}

	return filterBoringPlans(plans, freezes, scenes, sceneUsable, bf)
}

func filterBoringPlans(plans []highlight.ClipPlan, freezes []motion.Interval, scenes []float64, sceneUsable bool, bf config.BoringFilter) ([]highlight.ClipPlan, int) {
	kept := make([]highlight.ClipPlan, 0, len(plans))
	dropped := 0
	for _, plan := range plans {
		seg := plan.Segment
		if len(freezes) > 0 && motion.OverlapSeconds(freezes, seg.Start, seg.End) > bf.MaxFreezeOverlap {
			dropped++
			continue
		}
		if sceneUsable && bf.MinSceneChanges > 0 && motion.CountEvents(scenes, seg.Start, seg.End) < bf.MinSceneChanges {
			dropped++
			continue
		}
		kept = append(kept, plan)
	}
	if dropped == 0 {
		return plans, 0
	}
	for i := range kept {
		kept[i].Index = i + 1
	}
	return kept, dropped
}

// HealthCheck verifies the external binaries the stage shells out to.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	statuses := deps.CheckBinaries(deps.Requirements(h.cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return stage.Unhealthy(stageName, fmt.Sprintf("missing binaries: %s", strings.Join(missing, ", ")))
	}
	return stage.Healthy(stageName)
}

func classify(err error) error {
	switch {
	case errors.Is(err, highlight.ErrConfig):
		return services.ErrConfiguration
	case errors.Is(err, highlight.ErrSignal):
		return services.ErrValidation
	default:
		return services.ErrTransient
	}
}
