package log_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llxisdsh/parkinglot/internal/log"
)

func TestCreateHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level, format string
		contains      string
	}{
		"text":   {level: "info", format: "text", contains: "hello"},
		"json":   {level: "debug", format: "json", contains: `"msg":"hello"`},
		"logfmt": {level: "warn", format: "logfmt", contains: "msg=hello"},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			h, err := log.CreateHandler(buf, tc.level, tc.format)
			require.NoError(t, err)

			slog.New(h).Warn("hello", "threads", 4)
			assert.Contains(t, buf.String(), tc.contains)
		})
	}
}

func TestCreateHandlerLevelFilters(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h, err := log.CreateHandler(buf, "error", "text")
	require.NoError(t, err)

	slog.New(h).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestCreateHandlerErrors(t *testing.T) {
	t.Parallel()

	_, err := log.CreateHandler(&bytes.Buffer{}, "loud", "text")
	require.Error(t, err)

	_, err = log.CreateHandler(&bytes.Buffer{}, "info", "yaml")
	require.Error(t, err)
}
