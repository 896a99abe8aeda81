package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Decode asynchronous 5 bit Baudot (RTTY) characters from
 *		a stream of signed baseband samples.
 *
 * Description:	The input is whatever comes out of the FSK demodulator.
 *		Only the sign of each sample matters.  The polarity
 *		setting decides whether positive means mark or space.
 *
 *		There is no PLL.  Each character re-synchronizes on the
 *		mark to space transition of its own start bit:
 *
 *		  - Skip ahead 1.5 bit times to the middle of data bit 0.
 *		  - Sample five data bits, LSB first, one bit time apart.
 *		  - Look for mark (stop) where the last advance left us.
 *
 *		All advances truncate samples/bit to an integer, exactly
 *		like the old hardware UART style decoders, so output is
 *		bit for bit the same as theirs.
 *
 *		The decoder keeps its state between calls so a character
 *		can straddle two input windows.  It is not safe for
 *		concurrent use; one decoder per channel, one caller at a time.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid decoder configuration")

// Phase of the framing state machine.
type Phase int

const (
	AwaitingStart Phase = iota
	Framing
	AwaitingStop
)

func (p Phase) String() string {
	switch p {
	case AwaitingStart:
		return "AwaitingStart"
	case Framing:
		return "Framing"
	case AwaitingStop:
		return "AwaitingStop"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

const (
	dataBits = 5

	// Start bit + 5 data + stop with some margin.  Also the history the
	// host must keep, in bit times.
	lookaheadBits = 8

	// 1 start + 5 data + 1.42 stop, for output to input rate matching.
	bitsPerCharacter = 7.42

	// Middle of the first data bit, measured from the start edge.
	centreBits = 1.5
)

// DecoderConfig is fixed when the decoder is created.
type DecoderConfig struct {
	SampleRate float64
	BaudRate   float64
	Polarity   bool // true: positive samples are mark.
}

func (c DecoderConfig) Validate() error {
	// Written as !(x > 0) so NaN is rejected too.
	if !(c.SampleRate > 0) {
		return fmt.Errorf("sample rate %v must be positive: %w", c.SampleRate, ErrInvalidConfig)
	}

	if !(c.BaudRate > 0) {
		return fmt.Errorf("baud rate %v must be positive: %w", c.BaudRate, ErrInvalidConfig)
	}

	if math.IsInf(c.SampleRate, 0) || math.IsInf(c.BaudRate, 0) {
		return fmt.Errorf("rates must be finite: %w", ErrInvalidConfig)
	}

	return nil
}

// DecoderState is everything carried from one Decode call to the next.
type DecoderState struct {
	Phase       Phase
	BitIndex    int  // Valid only in Framing.
	Accumulator byte // Code word being assembled.
	ActiveTable Table
}

// DecoderStats are running totals since the decoder was created.
type DecoderStats struct {
	FramesStarted  uint64
	Characters     uint64
	FramingErrors  uint64 // No mark where the stop bit should be.
	FiguresShifts  uint64
	LettersShifts  uint64
	SamplesScanned uint64
}

type Decoder struct {
	config DecoderConfig

	spb   float64
	mark  bool
	space bool

	centreAdvance int
	bitAdvance    int

	state DecoderState
	stats DecoderStats
}

/*------------------------------------------------------------------
 *
 * Name:	NewDecoder
 *
 * Purpose:	Create a decoder.
 *
 * Inputs:	rate		- Samples per second of the baseband input.
 *
 *		baud		- Signalling rate, e.g. 45.45.
 *
 *		polarity	- true if a positive sample is mark.
 *
 * Returns:	Decoder waiting for a start bit, in LETTERS.
 *		Error wrapping ErrInvalidConfig if a rate isn't positive.
 *
 *------------------------------------------------------------------*/

func NewDecoder(rate float64, baud float64, polarity bool) (*Decoder, error) {
	return NewDecoderFromConfig(DecoderConfig{
		SampleRate: rate,
		BaudRate:   baud,
		Polarity:   polarity,
	})
}

func NewDecoderFromConfig(config DecoderConfig) (*Decoder, error) {
	var err = config.Validate()
	if err != nil {
		return nil, err
	}

	var d = &Decoder{ //nolint:exhaustruct
		config: config,
		spb:    config.SampleRate / config.BaudRate,
		mark:   config.Polarity,
		space:  !config.Polarity,
	}

	d.centreAdvance = int(d.spb * centreBits)
	d.bitAdvance = int(d.spb)

	// Below 2/3 sample per bit the centring step truncates to nothing and a
	// space level input would never move the cursor.
	if d.centreAdvance < 1 {
		d.centreAdvance = 1
	}

	d.state = DecoderState{Phase: AwaitingStart, BitIndex: 0, Accumulator: 0, ActiveTable: Letters}

	return d, nil
}

func (d *Decoder) Config() DecoderConfig {
	return d.config
}

func (d *Decoder) State() DecoderState {
	return d.state
}

func (d *Decoder) Stats() DecoderStats {
	return d.stats
}

// SamplesPerBit is sample rate / baud, not truncated.
func (d *Decoder) SamplesPerBit() float64 {
	return d.spb
}

// SampleBit is true when the sample is at mark level.
// Anything not greater than zero, NaN included, counts as "not positive".
func (d *Decoder) SampleBit(sample float64) bool {
	return (sample > 0) == d.mark
}

// HistoryRequired is the number of samples of look-back the host must
// keep between calls.
func (d *Decoder) HistoryRequired() int {
	return int(d.spb * lookaheadBits)
}

/*------------------------------------------------------------------
 *
 * Name:	RequiredInputFor
 *
 * Purpose:	Tell the host how many input samples are needed to
 *		have a chance of producing n output characters.
 *
 * Description:	Assumes 7.42 bit times per character (1.42 stop bits).
 *		Truncated, like the rest of the timing.
 *
 *------------------------------------------------------------------*/

func (d *Decoder) RequiredInputFor(n int) int {
	return int(float64(n) / ((d.config.BaudRate / d.config.SampleRate) / bitsPerCharacter))
}

/*------------------------------------------------------------------
 *
 * Name:	Decode
 *
 * Purpose:	Run the framing state machine over a window of samples.
 *
 * Inputs:	input		- Samples starting at the first one not
 *				  consumed by the previous call.
 *
 *		maxOutput	- Most characters to produce this call.
 *
 * Returns:	out		- Decoded characters.  Shift codes produce NUL.
 *
 *		consumed	- How many leading samples the host may discard.
 *
 * Description:	Stops when maxOutput is reached or when the cursor gets
 *		within 8 bit times of the end of the window.  A frame
 *		that can't finish in this window is picked up next time
 *		from the same state.
 *
 *------------------------------------------------------------------*/

func (d *Decoder) Decode(input []float64, maxOutput int) ([]byte, int) {
	var out = make([]byte, 0, max(maxOutput, 0))
	var cursor = 0
	var limit = float64(len(input)) - d.spb*lookaheadBits

	for len(out) < maxOutput && float64(cursor) < limit {
		switch d.state.Phase {
		case AwaitingStart:
			d.stats.SamplesScanned++

			if !d.SampleBit(input[cursor]) {
				d.state.Phase = Framing
				d.state.BitIndex = 0
				d.state.Accumulator = 0
				d.stats.FramesStarted++
				cursor += d.centreAdvance
			} else {
				cursor++
			}

		case Framing:
			if d.state.BitIndex >= dataBits {
				d.state.Phase = AwaitingStop
				break
			}

			if d.SampleBit(input[cursor]) {
				d.state.Accumulator |= 1 << d.state.BitIndex
			}
			d.state.BitIndex++
			cursor += d.bitAdvance

		case AwaitingStop:
			if d.SampleBit(input[cursor]) {
				out = append(out, d.emit(d.state.Accumulator))
			} else {
				d.stats.FramingErrors++
			}

			d.state.Phase = AwaitingStart
			d.state.Accumulator = 0
		}
	}

	return out, cursor
}

// emit applies any shift in the code word and returns the character for it.
func (d *Decoder) emit(code byte) byte {
	var table, isShift = ShiftFor(code)
	if isShift {
		d.state.ActiveTable = table
		if table == Figures {
			d.stats.FiguresShifts++
		} else {
			d.stats.LettersShifts++
		}
	}

	d.stats.Characters++

	return Lookup(d.state.ActiveTable, code)
}
