package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/aula-cli/internal/application"
	"github.com/bnema/aula-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAPICmd(app *app) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "api <path>",
		Short: "Call an Aula API method and print the raw response",
		Long: "api calls the resolved Aula API endpoint with the given query, for example\n" +
			"  aula api '?method=profiles.getProfilesByLogin'\n" +
			"A request body passed with --data is sent as a POST.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body json.RawMessage
			if strings.TrimSpace(data) != "" {
				body = json.RawMessage(data)
				if !json.Valid(body) {
					return fmt.Errorf("%w: --data is not valid json", domain.ErrInvalidRequest)
				}
			}
			if err := app.requireUsername(); err != nil {
				return err
			}

			resp, err := app.service.Call(cmd.Context(), application.CallCommand{
				Path: args[0],
				Body: body,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON request body")

	return cmd
}
