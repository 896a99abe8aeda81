package rtty

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLogFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "rx.log")

	var l = NewTextLog(false, path)
	l.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	require.True(t, l.Enabled())

	require.NoError(t, l.Write(0, "test.wav", "CQ CQ DE N0CALL"))
	require.NoError(t, l.Write(1, "test.wav", `SAYS "HI", 73`))
	l.Close()

	var b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "chan,utime,isotime,source,text\n"+
		"0,1709296200,2024-03-01T12:30:00Z,test.wav,CQ CQ DE N0CALL\n"+
		"1,1709296200,2024-03-01T12:30:00Z,test.wav,\"SAYS \"\"HI\"\", 73\"\n", string(b))

	// Reopening appends without another header.
	l = NewTextLog(false, path)
	require.NoError(t, l.Write(0, "x", "Y"))
	l.Close()

	b, _ = os.ReadFile(path)
	assert.Equal(t, 1, strings.Count(string(b), "chan,utime"))
}

func TestTextLogDaily(t *testing.T) {
	var dir = filepath.Join(t.TempDir(), "logs")

	var l = NewTextLog(true, dir)
	var day = time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	require.NoError(t, l.Write(0, "sc", "ONE"))

	day = day.Add(2 * time.Minute)
	require.NoError(t, l.Write(0, "sc", "TWO"))
	l.Close()

	assert.FileExists(t, filepath.Join(dir, "2024-03-01.log"))
	assert.FileExists(t, filepath.Join(dir, "2024-03-02.log"))
}

func TestTextLogDisabled(t *testing.T) {
	var l = NewTextLog(false, "")
	assert.False(t, l.Enabled())
	require.NoError(t, l.Write(0, "x", "nothing"))
	l.Close()
}
