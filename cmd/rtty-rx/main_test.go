package main

import (
	"os"
	"path/filepath"
	"testing"

	rtty "github.com/doismellburning/rtty/src"
	"github.com/stretchr/testify/require"
)

func Test_Main(t *testing.T) {
	var file = filepath.Join(t.TempDir(), "cq.wav")

	var cfg = rtty.DefaultConfig()
	var line, err = rtty.GenText(cfg.GenConfig(), "CQ CQ DE N0CALL 73\r\n")
	require.NoError(t, err)

	var audio = rtty.GenAFSK(line, float64(cfg.SampleRate), rtty.DefaultMarkFreq, rtty.DefaultSpaceFreq, 0.5)

	var f, createErr = os.Create(file)
	require.NoError(t, createErr)
	require.NoError(t, rtty.WriteWAV(f, cfg.SampleRate, audio))
	require.NoError(t, f.Close())

	rtty.SetupPflag([]string{"rtty-rx", "-a", "0", "--error-if-less-than", "10", file})
	rtty.AssertOutputContains(t, main, "CQ CQ DE N0CALL 73")
}
