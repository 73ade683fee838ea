package cmd

import (
	"github.com/bnema/aula-cli/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newCalendarCmd(app *app) *cobra.Command {
	var child string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a child's lessons and week plan events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := refreshSnapshot(cmd, app, asJSON)
			if err != nil {
				return err
			}
			events, err := app.service.CalendarEvents(cmd.Context(), child)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), events)
			}

			found, _ := snapshot.Roster.FindChild(child)
			rendered, err := status.RenderEvents(found, events)
			if err != nil {
				return err
			}
			return writeText(cmd.OutOrStdout(), rendered)
		},
	}

	cmd.Flags().StringVar(&child, "child", "", "Child id or first name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print events as JSON")
	_ = cmd.MarkFlagRequired("child")

	return cmd
}
