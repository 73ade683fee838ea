package cmd

import (
	"github.com/bnema/aula-cli/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *app) *cobra.Command {
	var next bool
	var child string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the week plan for each child",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := refreshSnapshot(cmd, app, asJSON); err != nil {
				return err
			}
			plans, err := app.service.ChildPlans(child, next)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), plans)
			}

			rendered, err := status.RenderPlans(plans)
			if err != nil {
				return err
			}
			return writeText(cmd.OutOrStdout(), rendered)
		},
	}

	cmd.Flags().BoolVar(&next, "next", false, "Show next week instead of the current one")
	cmd.Flags().StringVar(&child, "child", "", "Child id or first name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print plans as JSON")

	return cmd
}
