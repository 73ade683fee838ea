package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh periodically until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireUsername(); err != nil {
				return err
			}
			if interval <= 0 {
				interval = app.cfg.Refresh.Interval
			}
			if interval <= 0 {
				return fmt.Errorf("refresh interval must be positive, got %s", interval)
			}
			return watch(cmd.Context(), app, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between refreshes (default from config)")

	return cmd
}

func watch(ctx context.Context, app *app, interval time.Duration) error {
	logger := app.logger.Named("watch")
	logger.Info("watching", "interval", interval, "username", app.cfg.Username)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		cycleCtx, cancel := refreshContext(ctx, app.cfg.Refresh.Timeout)
		snapshot, err := app.service.Refresh(cycleCtx)
		cancel()

		switch {
		case err == nil:
			fields := []any{
				"refresh_id", snapshot.RefreshID,
				"children", len(snapshot.Roster.Children),
				"unread", snapshot.Message.Unread,
			}
			if snapshot.Plans != nil {
				fields = append(fields, "week", snapshot.Plans.Current.String())
			}
			logger.Info("refreshed", fields...)
		case errors.Is(err, domain.ErrRefreshInProgress):
			logger.Debug("previous refresh still running")
		case ctx.Err() != nil:
			return nil
		default:
			logger.Error("refresh failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info("stopped")
			return nil
		case <-ticker.C:
		}
	}
}
