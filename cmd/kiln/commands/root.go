// Package commands implements the CLI commands for the kiln build cache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, targetNames []string, opts app.BuildOptions) error
	GC(ctx context.Context, opts app.GCOptions) error
	Status(ctx context.Context, opts app.StatusOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
	SetJSONLogs(enabled bool)
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	jobs       int
	sequential bool
	jsonLogs   bool
	verbose    bool
	metricsOut string
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "An incremental build cache for native C++ projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := &globalFlags{}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to kiln.yaml (default: discovered from the working directory)")
	pf.IntVarP(&flags.jobs, "jobs", "j", 0, "Number of concurrent tool invocations (default: twice the logical CPUs)")
	pf.BoolVar(&flags.sequential, "sequential", false, "Run one tool invocation at a time")
	pf.BoolVar(&flags.jsonLogs, "json-logs", false, "Write logs as JSON")
	pf.BoolVar(&flags.verbose, "verbose", false, "Stream compiler and linker output")
	pf.StringVar(&flags.metricsOut, "metrics-out", "", "Write Prometheus metrics to this file")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if flags.jsonLogs {
			c.app.SetJSONLogs(true)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd(flags))
	rootCmd.AddCommand(c.newGCCmd(flags))
	rootCmd.AddCommand(c.newStatusCmd(flags))
	rootCmd.AddCommand(c.newCleanCmd(flags))
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
