package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func provide(a *app.App, l *mocks.MockLogger) ComponentProvider {
	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: a, Logger: l}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := app.New(mocks.NewMockConfigLoader(ctrl), mocks.NewMockToolInvoker(ctrl), mockLogger, metrics.NewNoop())

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provide(application, mockLogger))
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	t.Parallel()

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when a command fails.
func TestRun_ExecutionError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	dir := t.TempDir()
	mockLoader.EXPECT().Load(dir, "").Return(nil, domain.ErrConfigNotFound)
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	application := app.New(mockLoader, mocks.NewMockToolInvoker(ctrl), mockLogger, metrics.NewNoop())

	exitCode := run(context.Background(), []string{"status"}, io.Discard, provide(application, mockLogger),
		func(a *app.App) {
			a.WithWorkDir(dir)
		},
	)

	assert.Equal(t, 1, exitCode)
}

// TestRun_BuildFailureIsNotLogged verifies that failed targets only affect the exit code.
func TestRun_BuildFailureIsNotLogged(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockInvoker := mocks.NewMockToolInvoker(ctrl)

	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.cpp")
	target := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(lib, []byte("int f();\n"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte("int main() {}\n"), 0o600))

	mockLoader.EXPECT().Load(dir, "").Return(&domain.BuildConfig{
		Root:        dir,
		BuildDir:    filepath.Join(dir, ".kiln"),
		Jobs:        1,
		Library:     domain.LibraryConfig{Name: "core", Sources: []string{lib}, UnityChunks: 1},
		Targets:     []domain.TargetConfig{{Name: "main", Sources: []string{target}}},
		Timeouts:    domain.Timeouts{Batch: time.Minute, Task: time.Minute},
		MaxFailures: 3,
	}, nil)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	// The library compile and archive succeed; the target compile fails.
	mockInvoker.EXPECT().Invoke(gomock.Any(), gomock.Any(), dir).DoAndReturn(
		func(_ context.Context, argv []string, _ string) (domain.Result, error) {
			for i, arg := range argv {
				if arg == target {
					return domain.Result{OK: false, Output: "main.cpp:1: error", ExitCode: 1}, nil
				}
				if arg == "-o" || (argv[0] == "ar" && i == 2) {
					out := arg
					if arg == "-o" {
						out = argv[i+1]
					}
					if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
						return domain.Result{}, err
					}
					if err := os.WriteFile(out, []byte("ok"), 0o600); err != nil {
						return domain.Result{}, err
					}
				}
			}
			return domain.Result{OK: true}, nil
		},
	).AnyTimes()

	application := app.New(mockLoader, mockInvoker, mockLogger, metrics.NewNoop()).
		WithOutput(io.Discard).
		WithWorkDir(dir)

	exitCode := run(context.Background(), []string{"build"}, io.Discard, provide(application, mockLogger))
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that a cancelled context stops a running command.
func TestRun_Signal(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	blockCh := make(chan struct{})

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLoader.EXPECT().Load(gomock.Any(), gomock.Any()).DoAndReturn(func(_, _ string) (*domain.BuildConfig, error) {
		select {
		case <-blockCh:
			return nil, context.Canceled
		case <-time.After(5 * time.Second):
			return nil, errors.New("timeout in mock")
		}
	})

	mockLogger := mocks.NewMockLogger(ctrl)
	// Allow logging of the error when context is canceled
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	application := app.New(mockLoader, mocks.NewMockToolInvoker(ctrl), mockLogger, metrics.NewNoop()).
		WithWorkDir(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"status"}, io.Discard, provide(application, mockLogger))
	}()

	// Wait a bit to ensure run() reaches Load()
	time.Sleep(100 * time.Millisecond)

	cancel()
	close(blockCh)

	select {
	case ret := <-errCh:
		assert.NotEqual(t, 0, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	other := errors.New("boom")
	logger.EXPECT().Error(other).Times(1)

	assert.Equal(t, exitOK, exitCode(nil, logger))
	assert.Equal(t, exitFailure, exitCode(domain.ErrBuildExecutionFailed, logger))
	assert.Equal(t, exitFailure, exitCode(other, logger))
}
