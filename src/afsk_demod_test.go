package rtty

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDemodConfig(rate float64) DemodConfig {
	return DemodConfig{
		SampleRate: rate,
		BaudRate:   DefaultBaud,
		MarkFreq:   DefaultMarkFreq,
		SpaceFreq:  DefaultSpaceFreq,
	}
}

func TestDemodConfigValidate(t *testing.T) {
	require.NoError(t, testDemodConfig(8000).Validate())

	var c = testDemodConfig(4000)
	require.ErrorIs(t, c.Validate(), ErrInvalidConfig, "tones above Nyquist")

	c = testDemodConfig(8000)
	c.SpaceFreq = c.MarkFreq
	require.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = testDemodConfig(8000)
	c.MarkFreq = 0
	require.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = testDemodConfig(0)
	require.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	var d, err = NewAFSKDemodulator(testDemodConfig(4000))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, d)
}

func TestDemodSteadyTones(t *testing.T) {
	var d, err = NewAFSKDemodulator(testDemodConfig(8000))
	require.NoError(t, err)
	assert.Equal(t, testDemodConfig(8000), d.Config())

	var steady = func(isMark bool) float64 {
		var level = -1.0
		if isMark {
			level = 1
		}

		var audio = GenAFSK(constant(2000, level), 8000, DefaultMarkFreq, DefaultSpaceFreq, 0.5)
		var out = d.Process(audio, nil)
		require.Len(t, out, len(audio))

		return out[len(out)-1]
	}

	assert.Greater(t, steady(true), 0.1)
	assert.Less(t, steady(false), -0.1)
}

func TestDemodDecode(t *testing.T) {
	const text = "RYRYRY CQ CQ DE N0CALL K\r\n"

	for _, rate := range []float64{8000, 11025, 44100, 48000} {
		var cfg = DefaultGenConfig(rate)

		var line, err = GenText(cfg, text)
		require.NoError(t, err)

		var audio = GenAFSK(line, rate, DefaultMarkFreq, DefaultSpaceFreq, 0.5)

		var demod, demodErr = NewAFSKDemodulator(testDemodConfig(rate))
		require.NoError(t, demodErr)

		var d, _ = NewDecoder(rate, DefaultBaud, true)
		var out bytes.Buffer
		_, err = NewStream(d, &out).Write(demod.Process(audio, nil))
		require.NoError(t, err)

		assert.Equal(t, text, string(StripNulls(out.Bytes())), "rate %v", rate)
		assert.Equal(t, uint64(0), d.Stats().FramingErrors, "rate %v", rate)
	}
}
