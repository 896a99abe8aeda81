package rtty

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVWriteRead(t *testing.T) {
	var samples = []float64{0, 0.5, -0.5, 1, -1, 2, -2}

	var buf bytes.Buffer
	require.NoError(t, WriteWAV(&buf, 11025, samples))
	assert.Equal(t, 44+2*len(samples), buf.Len())

	var r, err = NewWAVReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(11025), r.Format.SampleRate)
	assert.Equal(t, uint16(16), r.Format.BitsPerSample)

	var out = make([]float64, 100)
	var n, readErr = r.Read(out)
	require.NoError(t, readErr)
	require.Equal(t, len(samples), n)

	// Clipped to full scale.
	var want = []float64{0, 0.5, -0.5, 1, -1, 1, -1}
	for i := range want {
		assert.InDelta(t, want[i], out[i], 0.001, "sample %d", i)
	}

	_, readErr = r.Read(out)
	assert.ErrorIs(t, readErr, io.EOF)
}

// 8 bit stereo with a LIST chunk in front of the fmt chunk.
func TestWAVReadStereo8(t *testing.T) {
	var buf bytes.Buffer

	var put = func(v any) {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}

	buf.WriteString("RIFF")
	put(uint32(0))
	buf.WriteString("WAVE")

	buf.WriteString("LIST")
	put(uint32(3))
	buf.WriteString("abc\x00") // Odd size, padded.

	buf.WriteString("fmt ")
	put(uint32(16))
	put(WAVFormat{FormatTag: 1, Channels: 2, SampleRate: 8000, ByteRate: 16000, BlockAlign: 2, BitsPerSample: 8})

	buf.WriteString("data")
	put(uint32(6))
	buf.Write([]byte{128, 0, 192, 255, 64, 128})

	var r, err = NewWAVReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	r.Channel = 1

	var out = make([]float64, 10)
	var n, _ = r.Read(out)
	require.Equal(t, 3, n)
	assert.InDelta(t, -1.0, out[0], 0.01)
	assert.InDelta(t, 1.0, out[1], 0.01)
	assert.InDelta(t, 0.0, out[2], 0.01)
}

func TestWAVReadErrors(t *testing.T) {
	var _, err = NewWAVReader(bytes.NewReader([]byte("hello")))
	require.ErrorIs(t, err, ErrNotWAV)

	_, err = NewWAVReader(bytes.NewReader([]byte("RIFF\x00\x00\x00\x00AVI LIST")))
	require.ErrorIs(t, err, ErrNotWAV)

	var buf bytes.Buffer
	require.NoError(t, WriteWAV(&buf, 8000, nil))

	var b = buf.Bytes()
	b[20] = 3 // IEEE float
	_, err = NewWAVReader(bytes.NewReader(b))
	require.ErrorIs(t, err, ErrUnsupportedWAV)

	require.ErrorIs(t, WriteWAV(io.Discard, 0, nil), ErrInvalidConfig)
}
