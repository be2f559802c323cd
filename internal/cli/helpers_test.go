package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/loredb/internal/testutil"
)

var testEpoch = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// newTestOptions returns options with deterministic IDs (rec_1, rec_2, ...)
// and a clock frozen at testEpoch.
func newTestOptions() *RootOptions {
	return &RootOptions{
		IDs:   testutil.NewSequenceIDGenerator("rec"),
		Clock: testutil.NewFrozenClock(testEpoch),
	}
}

// runCLI executes the root command with args and captures stdout and stderr.
func runCLI(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "lore.db")
}

func assertGolden(t *testing.T, name, actual string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(actual))
}
