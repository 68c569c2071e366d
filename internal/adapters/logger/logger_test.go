package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// newTestLogger writes to a buffer without ANSI escapes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_InfoAndWarn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("building libcore.a from 4 units")
	lg.Warn("continuing without precompiled header")

	g := goldie.New(t)
	g.Assert(t, "info_warn", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name: "zerr chain with metadata",
			err: zerr.With(
				zerr.Wrap(
					zerr.Wrap(errors.New("permission denied"), "failed to open file"),
					domain.ErrConfigReadFailed.Error(),
				),
				"path", "kiln.yaml",
			),
			goldenName: "error_chain",
		},
		{
			name: "joined library failure",
			err: errors.Join(
				domain.ErrLibraryBuildFailed,
				zerr.With(
					zerr.With(zerr.Wrap(domain.ErrCompileFailed, "unity_1.cpp"), "exit_code", 1),
					"output", "unity_1.cpp:3: error: expected ';'\n1 error generated.",
				),
			),
			goldenName: "error_joined",
		},
		{
			name:       "metadata on plain error",
			err:        zerr.With(errors.New("connection reset"), "target", "Blink"),
			goldenName: "error_plain_metadata",
		},
		{
			name:       "stdlib chain",
			err:        fmt.Errorf("load: %w", errors.New("no such file")),
			goldenName: "error_stdlib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Warn("state cache commit rejected")
	lg.Error(zerr.Wrap(domain.ErrLinkFailed, "Blink"))

	dec := json.NewDecoder(buf)

	var warn map[string]any
	require.NoError(t, dec.Decode(&warn))
	assert.Equal(t, "WARN", warn["level"])
	assert.Equal(t, "state cache commit rejected", warn["msg"])

	var failed map[string]any
	require.NoError(t, dec.Decode(&failed))
	assert.Equal(t, "ERROR", failed["level"])
	assert.Equal(t, "operation failed", failed["msg"])
	assert.Contains(t, fmt.Sprint(failed["error"]), "Blink")
}

func TestLogger_SetOutputKeepsMode(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	var buf bytes.Buffer
	lg.SetOutput(&buf)
	lg.Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestErrorLines_Metadata(t *testing.T) {
	t.Parallel()

	err := zerr.With(zerr.With(zerr.New("link failed"), "target", "Blink"), "exit_code", 2)
	assert.Equal(t, "Error: link failed\n       exit_code: 2\n       target: Blink", logger.ErrorLines(err))
}
