package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llxisdsh/parkinglot/internal/cli"
)

func TestRootCmd_FixedIterations(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_lockbench", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs([]string{"--total-iters", "100", "1-2"})
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	require.NoError(t, err)
	assert.Empty(t, stderr.String(), "stderr should be empty")

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Threads")
	assert.Contains(t, lines[0], "Acq (kHz)")
	assert.Contains(t, lines[0], "Fairness")
	assert.Contains(t, lines[0], "Wall (ms)")

	for i, line := range lines[1:] {
		fields := strings.Fields(line)
		require.Len(t, fields, 4, "row %d: %q", i, line)
		assert.Equal(t, []string{"1", "2"}[i], fields[0])
		// Every thread runs exactly the same number of iterations.
		assert.Equal(t, "1.00", fields[2])
	}
}

func TestRootCmd_TimeBased(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_lockbench", "", "")
	stdout := &bytes.Buffer{}

	tc.SetArgs([]string{"--duration", "20ms", "--lock", "rwmutex", "--num-locks", "2", "--random-locks", "3"})
	tc.SetOut(stdout)
	tc.SetErr(&bytes.Buffer{})

	err := tc.Execute()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "Wall (ms)")
	assert.Equal(t, "3", strings.Fields(lines[1])[0])
}

func TestRootCmd_RWMutexReaders(t *testing.T) {
	t.Parallel()

	tc := cli.NewRootCmd("test_lockbench", "", "")
	stdout := &bytes.Buffer{}

	tc.SetArgs([]string{"--lock", "rwmutex", "--read-percent", "90", "--total-iters", "200", "2"})
	tc.SetOut(stdout)
	tc.SetErr(&bytes.Buffer{})

	err := tc.Execute()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2", strings.Fields(lines[1])[0])
}

func TestRootCmd_InvalidArgs(t *testing.T) {
	t.Parallel()

	tcs := map[string][]string{
		"random locks need many locks": {"--random-locks", "2"},
		"bad thread range":             {"5-2"},
		"bad thread count":             {"abc"},
		"unknown lock":                 {"--lock", "spin", "2"},
		"negative work":                {"--work-inside", "-1", "--total-iters", "1", "1"},
		"bad log level":                {"--log_level", "loud", "1"},
		"reads need rwmutex":           {"--read-percent", "50", "1"},
		"read percent out of range":    {"--lock", "rwmutex", "--read-percent", "150", "1"},
	}

	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tc := cli.NewRootCmd("test_lockbench", "", "")
			stdout := &bytes.Buffer{}
			tc.SetArgs(args)
			tc.SetOut(stdout)
			tc.SetErr(&bytes.Buffer{})

			err := tc.Execute()
			require.Error(t, err)
			assert.Empty(t, stdout.String())
		})
	}
}
