package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/analysis"
	"clipforge/internal/config"
	"clipforge/internal/exporting"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
	"clipforge/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <file>",
		Short: "Analyze and render one recording in the foreground",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("inspect source %q: %w", path, err)
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := store.FindBySourcePath(cmd.Context(), path)
				if err != nil {
					return err
				}
				if item == nil {
					item, err = store.NewFile(cmd.Context(), path)
					if err != nil {
						return err
					}
				} else if item.Status == queue.StatusFailed || item.Status == queue.StatusReview {
					if _, err := store.RetryFailed(cmd.Context(), item.ID); err != nil {
						return err
					}
				}

				notifier := notifications.NewService(cfg)
				manager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
				manager.ConfigureStages(
					analysis.NewHandler(cfg, logger, notifier),
					exporting.NewHandler(cfg, logger, notifier),
				)
				if err := manager.Start(cmd.Context()); err != nil {
					return err
				}
				defer manager.Stop()

				final, err := waitForTerminalStatus(cmd.Context(), store, item.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				switch final.Status {
				case queue.StatusCompleted:
					fmt.Fprintf(out, "Rendered %d clips to %s\n", final.ClipsRendered, final.OutputDir)
					return nil
				case queue.StatusReview:
					return fmt.Errorf("needs review: %s", final.ReviewReason)
				default:
					return fmt.Errorf("processing failed: %s", final.ErrorMessage)
				}
			})
		},
	}
}

func waitForTerminalStatus(ctx context.Context, store *queue.Store, id int64) (*queue.Item, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		item, err := store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("queue item %d disappeared", id)
		}
		switch item.Status {
		case queue.StatusCompleted, queue.StatusFailed, queue.StatusReview:
			return item, nil
		}
	}
}
