package rtty

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	require.NoError(t, SetLogLevel("warn"))
	defer SetLogLevel("info") //nolint:errcheck

	Logger().Info("hidden")
	Logger().Warn("shown", "n", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "rtty")

	require.ErrorIs(t, SetLogLevel("chatty"), ErrInvalidConfig)
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "rtty-test", true)

	assert.Contains(t, buf.String(), "rtty-test - Version")
	assert.Contains(t, buf.String(), "BuildInfo")
}

func TestGetBuildSettingOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", getBuildSettingOrDefault(nil, "vcs.revision", "fallback"))
}
