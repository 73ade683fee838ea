package cmd

import (
	"context"
	"time"

	"github.com/bnema/aula-cli/internal/adapters/render/status"
	"github.com/bnema/aula-cli/internal/application"
	"github.com/spf13/cobra"
)

func newRefreshCmd(app *app) *cobra.Command {
	var asJSON bool
	var quiet bool

	cmd := &cobra.Command{
		Use:     "refresh",
		Aliases: []string{"status"},
		Short:   "Log in if needed and show presence, messages and week plan coverage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := refreshSnapshot(cmd, app, quiet || asJSON)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}

			rendered, err := status.Render(snapshot, status.RenderOptions{
				Now:        app.now(),
				StaleAfter: 2 * app.cfg.Refresh.Interval,
			})
			if err != nil {
				return err
			}
			return writeText(cmd.OutOrStdout(), rendered)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show the progress spinner")

	return cmd
}

// refreshSnapshot runs one refresh cycle bounded by the configured timeout.
func refreshSnapshot(cmd *cobra.Command, app *app, quiet bool) (application.Snapshot, error) {
	if err := app.requireUsername(); err != nil {
		return application.Snapshot{}, err
	}

	ctx, cancel := refreshContext(cmd.Context(), app.cfg.Refresh.Timeout)
	defer cancel()

	var snapshot application.Snapshot
	fetch := func(ctx context.Context) error {
		var err error
		snapshot, err = app.service.Refresh(ctx)
		return err
	}

	if quiet {
		return snapshot, fetch(ctx)
	}
	if err := runWithSpinner(ctx, cmd.ErrOrStderr(), "Refreshing Aula...", fetch); err != nil {
		return application.Snapshot{}, err
	}
	return snapshot, nil
}

func refreshContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
