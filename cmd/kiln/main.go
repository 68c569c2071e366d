// Package main is the entry point for the kiln build cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	_ "go.trai.ch/kiln/internal/wiring"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, graftComponents))
}

// graftComponents resolves the component graph registered by the wiring package.
func graftComponents(ctx context.Context) (*app.Components, func(), error) {
	c, _, err := graft.ExecuteFor[*app.Components](ctx)
	return c, func() {}, err
}

// run executes one kiln invocation and returns its exit code. Interrupts cancel ctx so
// in-flight compiles are stopped.
func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// No logger yet.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailure
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	return exitCode(cli.Execute(ctx), components.Logger)
}

// exitCode maps a command error to the process exit code. Failed targets are already listed
// in the build summary, so only other errors are logged.
func exitCode(err error, logger ports.Logger) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrBuildExecutionFailed):
		return exitFailure
	default:
		logger.Error(err)
		return exitFailure
	}
}
