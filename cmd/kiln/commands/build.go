package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newBuildCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the shared library and the given targets (all when none are named)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")

			return c.app.Build(cmd.Context(), args, app.BuildOptions{
				ConfigPath: flags.configPath,
				Jobs:       flags.jobs,
				Sequential: flags.sequential,
				NoCache:    noCache,
				Verbose:    flags.verbose,
				MetricsOut: flags.metricsOut,
			})
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Ignore every cache and rebuild from scratch")
	return cmd
}
