package exporting

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"clipforge/internal/analysis"
	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/fileutil"
	"clipforge/internal/highlight"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/services"
	"clipforge/internal/stage"
)

const stageName = "rendering"

// clipRenderer abstracts the ffmpeg renderer so tests can observe the
// realized plan without encoding video.
type clipRenderer interface {
	RenderClip(ctx context.Context, sourcePath, outPath string, plan highlight.ClipPlan, hasAudio bool) error
}

// Handler renders the planned clips for one queue item.
type Handler struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	renderer clipRenderer
}

// NewHandler constructs the rendering stage handler.
func NewHandler(cfg *config.Config, logger *slog.Logger, notifier notifications.Service) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Handler{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "exporting"),
		notifier: notifier,
		renderer: render.New(cfg, logger),
	}
}

// Prepare decodes the stored clip plan and picks the output directory.
func (h *Handler) Prepare(_ context.Context, item *queue.Item) error {
	if strings.TrimSpace(item.PlanJSON) == "" {
		return services.Wrap(services.ErrValidation, stageName, "plan",
			"queue item has no analysis plan", nil)
	}
	report, err := analysis.ParseReport(item.PlanJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "plan",
			"stored analysis plan is unreadable", err)
	}
	if len(report.Plans) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "plan",
			"analysis plan contains no clips", nil)
	}

	item.OutputDir = filepath.Join(h.cfg.Paths.OutputDir, sourceStem(item.SourcePath))
	item.SetProgress("Rendering", fmt.Sprintf("%d clips queued", len(report.Plans)), 0)
	return nil
}

// Execute renders every planned clip and optionally trashes the source.
func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	report, err := analysis.ParseReport(item.PlanJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "plan",
			"stored analysis plan is unreadable", err)
	}

	log := logging.WithContext(ctx, h.logger)
	total := len(report.Plans)
	item.ClipsRendered = 0

	for i, plan := range report.Plans {
		if err := ctx.Err(); err != nil {
			return err
		}

		outPath := filepath.Join(item.OutputDir, render.OutputName(plan.Index))
		item.SetProgress("Rendering",
			fmt.Sprintf("Rendering clip %d of %d", i+1, total),
			float64(i)/float64(total)*100)

		if err := h.renderer.RenderClip(ctx, item.SourcePath, outPath, plan, report.HasAudio); err != nil {
			return err
		}
		item.ClipsRendered++

		log.Info("clip rendered",
			logging.String("output", outPath),
			logging.Float64("clip_duration_sec", plan.Duration()),
		)
	}

	if h.cfg.Output.DeleteOriginal {
		trashed, err := fileutil.MoveToTrash(item.SourcePath, h.cfg.Paths.TrashDir)
		if err != nil {
			log.Warn("failed to move source to trash", logging.Error(err))
		} else {
			log.Info("source moved to trash", logging.String("trash_path", trashed))
		}
	}

	item.SetProgress("Rendering", fmt.Sprintf("%d clips rendered", item.ClipsRendered), 100)

	if err := h.notifier.NotifyClipsReady(ctx, item.Title, item.OutputDir, item.ClipsRendered); err != nil {
		log.Warn("clips-ready notification failed", logging.Error(err))
	}
	return nil
}

// HealthCheck verifies ffmpeg availability.
func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	statuses := deps.CheckBinaries(deps.Requirements(h.cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return stage.Unhealthy(stageName, fmt.Sprintf("missing binaries: %s", strings.Join(missing, ", ")))
	}
	return stage.Healthy(stageName)
}

func sourceStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
