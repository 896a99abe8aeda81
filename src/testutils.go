package rtty

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

// AssertOutputContains runs command with stdout captured.
// Diagnostics go to stderr so they don't get in the way.
func AssertOutputContains(t *testing.T, command func(), expectedOutputContains string) {
	t.Helper()

	var oldStdout = os.Stdout
	defer func() {
		os.Stdout = oldStdout
	}()

	var r, w, _ = os.Pipe()
	os.Stdout = w

	// Read while the command runs, or a large output fills the pipe.
	var done = make(chan []byte)
	go func() {
		var b, _ = io.ReadAll(r)
		done <- b
	}()

	command()

	w.Close() //nolint:gosec

	os.Stdout = oldStdout

	var outputBytes = <-done

	assert.Contains(t, string(outputBytes), expectedOutputContains)
}

// SetupPflag makes it possible to run a command's main more than once
// in a test binary.  pflag (not unreasonably) assumes it only ever gets
// called once.
func SetupPflag(args []string) {
	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
}
