package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &wireOptions{}
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "aula",
		Short:         "Aula school portal client",
		Long:          "aula logs in to the Aula school portal through UNI-Login and shows presence, unread messages, week plans and the school calendar for your children.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipWiring(cmd) {
				return nil
			}
			wired, err := wireApp(*opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("AULA_CONFIG"), "Config file (default $HOME/.config/aula/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (trace|debug|info|warn|error|off)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRefreshCmd(app),
		newWatchCmd(app),
		newPlanCmd(app),
		newCalendarCmd(app),
		newAPICmd(app),
		newAuthCmd(app),
		newConfigCmd(app, opts),
	)

	return rootCmd
}

const skipWiringAnnotation = "aula/skip-wiring"

func skipWiring(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipWiringAnnotation]; ok {
			return true
		}
	}
	return false
}
