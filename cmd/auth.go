package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/aula-cli/internal/application"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the UNI-Login password",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRemoveCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var password string
	var fromStdin bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the password for the configured username",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireUsername(); err != nil {
				return err
			}
			if fromStdin {
				if password != "" {
					return errors.New("--password and --password-stdin are mutually exclusive")
				}
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			var verifyFunc application.VerifyFunc
			if verify {
				verifyFunc = app.session.Login
			}

			if err := app.credentials.SetPassword(cmd.Context(), application.SetPasswordCommand{
				Username: app.cfg.Username,
				Password: password,
			}, verifyFunc); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "password stored for %s\n", app.cfg.Username)
			return err
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&verify, "verify", false, "Log in with the new password and restore the old one on failure")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored password for the configured username",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireUsername(); err != nil {
				return err
			}
			if err := app.credentials.RemovePassword(cmd.Context(), app.cfg.Username); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "password removed for %s\n", app.cfg.Username)
			return err
		},
	}
}
