// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// ToolInvoker runs a native tool and captures its combined output.
//
//go:generate mockgen -source=tool_invoker.go -destination=mocks/mock_tool_invoker.go -package=mocks
type ToolInvoker interface {
	// Invoke runs argv in dir.
	//
	// A non-zero exit is reported through Result.OK and Result.ExitCode with a nil error.
	// The error is non-nil only when the process could not be started, and then wraps
	// domain.ErrToolInvocation.
	Invoke(ctx context.Context, argv []string, dir string) (domain.Result, error)
}
