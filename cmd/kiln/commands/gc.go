package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newGCCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Evict old executables from the link cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			return c.app.GC(cmd.Context(), app.GCOptions{
				ConfigPath: flags.configPath,
				DryRun:     dryRun,
				MetricsOut: flags.metricsOut,
			})
		},
	}
	cmd.Flags().Bool("dry-run", false, "Report what would be removed without deleting anything")
	return cmd
}
