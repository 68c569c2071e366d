// Package shell runs compiler, archiver and linker processes.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// waitDelay bounds how long a cancelled tool may keep its output pipe open.
const waitDelay = 2 * time.Second

// Invoker implements ports.ToolInvoker with os/exec.
type Invoker struct {
	echo ports.Logger
}

var _ ports.ToolInvoker = (*Invoker)(nil)

// Option configures an Invoker.
type Option func(*Invoker)

// WithEcho streams every output line of every tool to l as it arrives.
func WithEcho(l ports.Logger) Option {
	return func(i *Invoker) {
		i.echo = l
	}
}

// NewInvoker creates an Invoker.
func NewInvoker(opts ...Option) *Invoker {
	i := &Invoker{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke runs argv in dir and waits for it. Stdout and stderr are captured together in
// arrival order. A non-zero exit is reported through the result; the error is reserved for
// processes that could not be started or were cancelled.
func (i *Invoker) Invoke(ctx context.Context, argv []string, dir string) (domain.Result, error) {
	if len(argv) == 0 {
		return domain.Result{ExitCode: -1}, zerr.Wrap(domain.ErrToolInvocation, "empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // Tool argv comes from the build config
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	out := &syncBuffer{}
	var w io.Writer = out
	var echo *logWriter
	if i.echo != nil {
		echo = &logWriter{logger: i.echo}
		w = &teeWriter{a: out, b: echo}
	}
	// The same writer for both streams keeps their relative order.
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		return domain.Result{ExitCode: -1}, zerr.With(zerr.Wrap(err, domain.ErrToolInvocation.Error()), "tool", argv[0])
	}

	err := cmd.Wait()
	if echo != nil {
		echo.Close()
	}

	res := domain.Result{OK: err == nil, Output: out.String(), ExitCode: cmd.ProcessState.ExitCode()}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, zerr.With(zerr.Wrap(ctxErr, "tool interrupted"), "tool", argv[0])
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, nil
	}
	return res, zerr.With(zerr.Wrap(err, domain.ErrToolInvocation.Error()), "tool", argv[0])
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type teeWriter struct {
	a, b io.Writer
}

func (t *teeWriter) Write(p []byte) (int, error) {
	_, _ = t.b.Write(p)
	return t.a.Write(p)
}

// logWriter forwards complete lines to a logger.
type logWriter struct {
	mu     sync.Mutex
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *logWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
}

func (w *logWriter) logLine(line []byte) {
	w.logger.Info(strings.TrimSuffix(string(line), "\r"))
}
