package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"clipforge/internal/analysis"
	"clipforge/internal/deps"
	"clipforge/internal/exporting"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
	"clipforge/internal/watchfolder"
	"clipforge/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "daemon",
		Aliases: []string{"watch"},
		Short:   "Watch the drop directory and process recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, ctx)
		},
	}
}

func runDaemon(cmd *cobra.Command, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required binaries: %v", missing)
	}

	logger, err := ctx.newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "clipforge.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return errors.New("another clipforge daemon is already running")
	}
	defer lock.Unlock()

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	manager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
	manager.ConfigureStages(
		analysis.NewHandler(cfg, logger, notifier),
		exporting.NewHandler(cfg, logger, notifier),
	)

	watcher := watchfolder.New(cfg, store, logger, notifier)

	if err := manager.Start(signalCtx); err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	defer manager.Stop()

	if err := watcher.Start(signalCtx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	logger.Info("clipforge daemon started",
		logging.String("watch_dir", cfg.Paths.WatchDir),
		logging.String("output_dir", cfg.Paths.OutputDir),
		logging.String("lock_file", lockPath),
	)

	<-signalCtx.Done()
	logger.Info("clipforge daemon shutting down")
	return nil
}
