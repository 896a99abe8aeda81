package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Audio frequency shift keying demodulator for RTTY.
 *
 * Description:	Correlate the audio against the mark and space tones,
 *		take the amplitude of each, subtract, and low pass filter
 *		the difference.  The result is positive while the mark
 *		tone is stronger.  That is the signed baseband Decoder
 *		wants; any polarity inversion is left to the decoder.
 *
 *		Correlators are one bit time long, which is about right
 *		for the usual 170 Hz shift at 45.45 baud.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
)

const (
	DefaultMarkFreq  = 2125.0
	DefaultSpaceFreq = 2295.0
	DefaultBaud      = 45.45
)

type DemodConfig struct {
	SampleRate float64
	BaudRate   float64
	MarkFreq   float64
	SpaceFreq  float64
}

func (c DemodConfig) Validate() error {
	if !(c.SampleRate > 0) || !(c.BaudRate > 0) {
		return fmt.Errorf("sample rate %v, baud %v: %w", c.SampleRate, c.BaudRate, ErrInvalidConfig)
	}

	var nyquist = c.SampleRate / 2
	for _, f := range []float64{c.MarkFreq, c.SpaceFreq} {
		if !(f > 0) || f >= nyquist {
			return fmt.Errorf("tone %v Hz must be between 0 and %v Hz: %w", f, nyquist, ErrInvalidConfig)
		}
	}

	if c.MarkFreq == c.SpaceFreq {
		return fmt.Errorf("mark and space both %v Hz: %w", c.MarkFreq, ErrInvalidConfig)
	}

	return nil
}

type AFSKDemodulator struct {
	config DemodConfig

	markSin, markCos   []float64
	spaceSin, spaceCos []float64
	lowpass            []float64

	raw  []float64 // Audio delay line, newest first.
	diff []float64 // Mark minus space amplitude, newest first.
}

func NewAFSKDemodulator(config DemodConfig) (*AFSKDemodulator, error) {
	var err = config.Validate()
	if err != nil {
		return nil, err
	}

	// Odd number of taps, about one bit long.
	var size = int(config.SampleRate/config.BaudRate) | 1
	size = max(size, 3)

	var d = &AFSKDemodulator{config: config} //nolint:exhaustruct

	d.markSin, d.markCos, err = genTone(config.MarkFreq, config.SampleRate, size, windowHamming)
	if err != nil {
		return nil, err
	}

	d.spaceSin, d.spaceCos, err = genTone(config.SpaceFreq, config.SampleRate, size, windowHamming)
	if err != nil {
		return nil, err
	}

	d.lowpass, err = genLowpass(config.BaudRate/config.SampleRate, size, windowCosine)
	if err != nil {
		return nil, err
	}

	d.raw = make([]float64, size)
	d.diff = make([]float64, size)

	return d, nil
}

func (d *AFSKDemodulator) Config() DemodConfig {
	return d.config
}

// ProcessSample takes one audio sample and returns one baseband sample.
func (d *AFSKDemodulator) ProcessSample(sam float64) float64 {
	pushSample(sam, d.raw)

	var m = math.Hypot(convolve(d.raw, d.markSin), convolve(d.raw, d.markCos))
	var s = math.Hypot(convolve(d.raw, d.spaceSin), convolve(d.raw, d.spaceCos))

	pushSample(m-s, d.diff)

	return convolve(d.diff, d.lowpass)
}

// Process demodulates a block of audio, appending to out.
func (d *AFSKDemodulator) Process(audio []float64, out []float64) []float64 {
	for _, sam := range audio {
		out = append(out, d.ProcessSample(sam))
	}

	return out
}
