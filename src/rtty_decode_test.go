package rtty

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	testRate = 8000.0
	testBaud = 45.45
)

func genCodes(t *testing.T, polarity bool, codes ...byte) []float64 {
	t.Helper()

	var cfg = DefaultGenConfig(testRate)
	cfg.Polarity = polarity

	var line, err = GenBaseband(cfg, codes)
	require.NoError(t, err)

	return line
}

func constant(n int, v float64) []float64 {
	var s = make([]float64, n)
	for i := range s {
		s[i] = v
	}

	return s
}

func TestNewDecoderInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		rate float64
		baud float64
	}{
		{"zero rate", 0, 45.45},
		{"negative rate", -8000, 45.45},
		{"zero baud", 8000, 0},
		{"negative baud", 8000, -50},
		{"NaN rate", math.NaN(), 45.45},
		{"NaN baud", 8000, math.NaN()},
		{"infinite rate", math.Inf(1), 45.45},
		{"infinite baud", 8000, math.Inf(1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var d, err = NewDecoder(tc.rate, tc.baud, true)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, d)
		})
	}
}

func TestDecoderTiming(t *testing.T) {
	var d, err = NewDecoder(testRate, testBaud, true)
	require.NoError(t, err)

	assert.InDelta(t, 176.0176, d.SamplesPerBit(), 0.0001)
	assert.Equal(t, 264, d.centreAdvance)
	assert.Equal(t, 176, d.bitAdvance)
	assert.Equal(t, 1408, d.HistoryRequired())
	assert.Equal(t, 13060, d.RequiredInputFor(10))
	assert.Equal(t, 1306, d.RequiredInputFor(1))
	assert.Equal(t, 0, d.RequiredInputFor(0))

	var s = d.State()
	assert.Equal(t, AwaitingStart, s.Phase)
	assert.Equal(t, Letters, s.ActiveTable)
	assert.Equal(t, DecoderConfig{SampleRate: testRate, BaudRate: testBaud, Polarity: true}, d.Config())
}

func TestSampleBit(t *testing.T) {
	var normal, _ = NewDecoder(testRate, testBaud, true)
	var inverted, _ = NewDecoder(testRate, testBaud, false)

	assert.True(t, normal.SampleBit(0.5))
	assert.False(t, normal.SampleBit(-0.5))
	assert.False(t, normal.SampleBit(0))
	assert.False(t, normal.SampleBit(math.NaN()))

	assert.False(t, inverted.SampleBit(0.5))
	assert.True(t, inverted.SampleBit(-0.5))
	assert.True(t, inverted.SampleBit(0))
	assert.True(t, inverted.SampleBit(math.NaN()))
}

func TestDecodeShifts(t *testing.T) {
	for _, polarity := range []bool{true, false} {
		var d, err = NewDecoder(testRate, testBaud, polarity)
		require.NoError(t, err)

		var out, consumed = d.Decode(genCodes(t, polarity, CodeFigures, 16, CodeLetters, 3), 100)

		assert.Equal(t, []byte{0, '5', 0, 'A'}, out, "polarity %v", polarity)
		assert.Positive(t, consumed)

		var stats = d.Stats()
		assert.Equal(t, uint64(4), stats.FramesStarted)
		assert.Equal(t, uint64(4), stats.Characters)
		assert.Equal(t, uint64(1), stats.FiguresShifts)
		assert.Equal(t, uint64(1), stats.LettersShifts)
		assert.Equal(t, uint64(0), stats.FramingErrors)
		assert.Equal(t, Letters, d.State().ActiveTable)
	}
}

func TestDecodeIdleMark(t *testing.T) {
	var d, _ = NewDecoder(testRate, testBaud, true)

	var out, consumed = d.Decode(constant(10000, 1), 100)

	assert.Empty(t, out)
	assert.Equal(t, 10000-d.HistoryRequired(), consumed)
	assert.Equal(t, AwaitingStart, d.State().Phase)
	assert.Equal(t, uint64(0), d.Stats().FramesStarted)
}

func TestDecodeConstantSpace(t *testing.T) {
	var d, _ = NewDecoder(testRate, testBaud, true)

	var out, consumed = d.Decode(constant(20000, -1), 100)

	assert.Empty(t, out)
	assert.Positive(t, consumed)
	assert.LessOrEqual(t, consumed, 20000)

	var stats = d.Stats()
	assert.Positive(t, stats.FramesStarted)
	assert.Positive(t, stats.FramingErrors)
	assert.Equal(t, uint64(0), stats.Characters)
}

func TestDecodeNaN(t *testing.T) {
	var d, _ = NewDecoder(testRate, testBaud, true)

	var out, consumed = d.Decode(constant(5000, math.NaN()), 100)
	assert.Empty(t, out)
	assert.LessOrEqual(t, consumed, 5000)

	out, _ = d.Decode(constant(5000, math.Inf(1)), 100)
	assert.Empty(t, out)
}

func TestDecodeEmptyInput(t *testing.T) {
	var d, _ = NewDecoder(testRate, testBaud, true)

	var out, consumed = d.Decode(nil, 10)
	assert.Empty(t, out)
	assert.Equal(t, 0, consumed)

	// Shorter than the look-ahead: nothing can be done yet.
	out, consumed = d.Decode(constant(1000, -1), 10)
	assert.Empty(t, out)
	assert.Equal(t, 0, consumed)
	assert.Equal(t, AwaitingStart, d.State().Phase)
}

// With a start edge at p, the window must extend past p + 8 bit times
// before the decoder will commit to the frame.
func TestDecodeLookaheadBoundary(t *testing.T) {
	const p = 250

	var input = slices.Concat(constant(p, 1), constant(800, -1))

	var d, _ = NewDecoder(1000, 10, true)
	var out, consumed = d.Decode(input, 10)

	assert.Empty(t, out)
	assert.Equal(t, p, consumed)
	assert.Equal(t, AwaitingStart, d.State().Phase)

	input = append(input, -1)

	d, _ = NewDecoder(1000, 10, true)
	out, consumed = d.Decode(input, 10)

	assert.Empty(t, out)
	assert.Equal(t, p+150, consumed)
	assert.Equal(t, Framing, d.State().Phase)
	assert.Equal(t, uint64(1), d.Stats().FramesStarted)
}

func TestDecodeMaxOutput(t *testing.T) {
	var input = genCodes(t, true, 10, 21, 10, 21, 10, 21)

	var d, _ = NewDecoder(testRate, testBaud, true)

	var out, consumed = d.Decode(input, 0)
	assert.Empty(t, out)
	assert.Equal(t, 0, consumed)

	out, consumed = d.Decode(input, 2)
	assert.Equal(t, "RY", string(out))
	assert.Less(t, consumed, len(input))

	var rest, _ = d.Decode(input[consumed:], 100)
	assert.Equal(t, "RYRY", string(rest))
}

func TestDecodeTablePersists(t *testing.T) {
	var d, _ = NewDecoder(testRate, testBaud, true)

	var out, _ = d.Decode(genCodes(t, true, CodeFigures), 10)
	assert.Equal(t, []byte{0}, out)
	assert.Equal(t, Figures, d.State().ActiveTable)

	out, _ = d.Decode(genCodes(t, true, 16, 3), 10)
	assert.Equal(t, "5-", string(out))
}

// A frame cut off by the end of the window carries on in the next call.
func TestDecodeFrameAcrossCalls(t *testing.T) {
	var input = genCodes(t, true, 3)

	var d, _ = NewDecoder(testRate, testBaud, true)

	// Stop just after the first data bit.
	var edge = slices.IndexFunc(input, func(v float64) bool { return v < 0 })
	var cut = edge + d.centreAdvance + 1 + d.HistoryRequired()

	var out, consumed = d.Decode(input[:cut], 10)
	assert.Empty(t, out)
	assert.Equal(t, Framing, d.State().Phase)
	assert.Equal(t, 1, d.State().BitIndex)

	out, _ = d.Decode(input[consumed:], 10)
	assert.Equal(t, "A", string(out))
}

func TestDecodeFramingError(t *testing.T) {
	var d, _ = NewDecoder(1000, 10, true)

	// Start, five space data bits, space where the stop bit should be.
	var input = slices.Concat(constant(100, 1), constant(700, -1), constant(1000, 1))

	var out, _ = d.Decode(input, 10)
	assert.Empty(t, out)
	assert.Equal(t, uint64(1), d.Stats().FramingErrors)
}

func TestDecodeDegenerateRate(t *testing.T) {
	// Less than one sample per bit.  Useless, but it must not hang.
	var d, err = NewDecoder(1, 10, true)
	require.NoError(t, err)

	var _, consumed = d.Decode(constant(100, -1), 1000)
	assert.Equal(t, 100, consumed)
}

func TestDecodeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var rate = rapid.Float64Range(1, 48000).Draw(t, "rate")
		var baud = rapid.Float64Range(1, 300).Draw(t, "baud")
		var polarity = rapid.Bool().Draw(t, "polarity")
		var input = rapid.SliceOfN(rapid.Float64Range(-1, 1), 0, 3000).Draw(t, "input")
		var maxOutput = rapid.IntRange(0, 50).Draw(t, "maxOutput")

		var d1, err = NewDecoder(rate, baud, polarity)
		require.NoError(t, err)
		var d2, _ = NewDecoder(rate, baud, polarity)

		var out1, consumed1 = d1.Decode(input, maxOutput)
		var out2, consumed2 = d2.Decode(input, maxOutput)

		assert.Equal(t, out1, out2)
		assert.Equal(t, consumed1, consumed2)
		assert.Equal(t, d1.State(), d2.State())

		assert.LessOrEqual(t, len(out1), maxOutput)
		assert.GreaterOrEqual(t, consumed1, 0)
		assert.LessOrEqual(t, consumed1, len(input))
	})
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "AwaitingStart", AwaitingStart.String())
	assert.Equal(t, "Framing", Framing.String())
	assert.Equal(t, "AwaitingStop", AwaitingStop.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
}
