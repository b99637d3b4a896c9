package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
)

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	st, ok := m.stageForStatus(item.Status)
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitForItemOrShutdown(ctx)
		return nil
	}

	stageCtx := services.WithItemID(ctx, item.ID)
	stageCtx = services.WithStage(stageCtx, st.name)
	stageCtx = services.WithRunID(stageCtx, item.RunID)
	stageLogger := logging.WithContext(stageCtx, m.logger)

	if err := m.transitionToProcessing(stageCtx, st, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, st, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, st pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.String("source_file", strings.TrimSpace(item.SourcePath)),
	)

	if st.handler == nil {
		item.SetFailed(fmt.Sprintf("stage %s missing handler", st.name))
		if err := m.store.Update(ctx, item); err != nil {
			stageLogger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	if err := st.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, st.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := st.handler.Execute(ctx, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, st.name, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == st.processingStatus || item.Status == "" {
		item.Status = st.doneStatus
	}
	if item.Status == queue.StatusCompleted && item.ProgressPercent < 100 {
		item.SetProgressComplete("Completed", "All clips rendered")
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) transitionToProcessing(ctx context.Context, st pipelineStage, item *queue.Item) error {
	item.Status = st.processingStatus
	item.SetProgress(stageLabel(st.name), fmt.Sprintf("%s started", st.name), 0)
	item.ErrorMessage = ""
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	return nil
}

func stageLabel(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	status := services.FailureStatus(stageErr)
	message := strings.TrimSpace(stageErr.Error())

	if status == queue.StatusReview || item.NeedsReview {
		item.SetReview(message)
	} else {
		item.SetFailed(message)
	}

	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Error("failed to persist stage failure", logging.Error(err))
	}

	logging.WithContext(ctx, m.logger).Error("stage failed",
		logging.String("stage", stageName),
		logging.String("resolved_status", string(item.Status)),
		logging.Error(stageErr),
	)

	if item.Status == queue.StatusReview {
		if err := m.notifier.NotifyReview(ctx, item.Title, item.ReviewReason); err != nil {
			m.logger.Warn("review notification failed", logging.Error(err))
		}
	} else {
		if err := m.notifier.NotifyError(ctx, stageErr, stageName); err != nil {
			m.logger.Warn("error notification failed", logging.Error(err))
		}
	}
}
