package cmd

import (
	"fmt"
	"strings"

	configtoml "github.com/bnema/aula-cli/internal/adapters/config/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app, opts *wireOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(opts), newConfigShowCmd(app))

	return cmd
}

func newConfigInitCmd(opts *wireOptions) *cobra.Command {
	var username string
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file",
		Annotations: map[string]string{skipWiringAnnotation: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configtoml.Default()
			if err != nil {
				return err
			}
			cfg.Username = strings.TrimSpace(username)

			path := opts.configPath
			if path == "" {
				path, err = configtoml.DefaultPath()
				if err != nil {
					return err
				}
			}
			if err := configtoml.Write(path, cfg, force); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "UNI-Login username")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := configtoml.Encode(app.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if app.configUsed != "" {
				if _, err := fmt.Fprintf(out, "# %s\n", app.configUsed); err != nil {
					return err
				}
			}
			_, err = out.Write(data)
			return err
		},
	}
}
