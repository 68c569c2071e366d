package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build state and intermediate outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				ConfigPath: flags.configPath,
				All:        all,
			})
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Also remove the link cache")

	return cmd
}
