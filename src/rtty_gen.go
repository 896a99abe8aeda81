package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Generate RTTY signals for testing the receive side.
 *
 * Description:	GenBaseband produces the signed line state a
 *		demodulator would deliver: +1/-1 with polarity applied.
 *		GenAFSK turns that into audio tones.
 *
 *		Bit boundaries are kept in floating point so sample rates
 *		that aren't a multiple of the baud don't accumulate error.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
)

type GenConfig struct {
	SampleRate float64
	BaudRate   float64
	Polarity   bool

	StopBits float64 // 1, 1.42, 1.5 or 2 are usual.

	LeadBits float64 // Idle mark before the first character.
	TailBits float64 // Idle mark after the last one.
}

// DefaultGenConfig is 45.45 baud with 1.5 stop bits, the common amateur setting.
func DefaultGenConfig(sampleRate float64) GenConfig {
	return GenConfig{
		SampleRate: sampleRate,
		BaudRate:   45.45,
		Polarity:   true,
		StopBits:   1.5,
		LeadBits:   10,
		TailBits:   10,
	}
}

type baseband struct {
	spb    float64
	mark   float64
	end    float64 // Position, in samples, where the current bit ends.
	result []float64
}

func (b *baseband) put(isMark bool, bits float64) {
	var level = -b.mark
	if isMark {
		level = b.mark
	}

	b.end += bits * b.spb
	for float64(len(b.result)) < b.end {
		b.result = append(b.result, level)
	}
}

/*------------------------------------------------------------------
 *
 * Name:	GenBaseband
 *
 * Purpose:	Frame code words and sample them.
 *
 * Inputs:	cfg	- Rates, polarity, stop length, idle padding.
 *
 *		codes	- 5 bit code words.  Upper bits are ignored.
 *
 * Returns:	One sample per element, +1 or -1.
 *
 *------------------------------------------------------------------*/

func GenBaseband(cfg GenConfig, codes []byte) ([]float64, error) {
	if !(cfg.SampleRate > 0) || !(cfg.BaudRate > 0) {
		return nil, fmt.Errorf("sample rate %v, baud %v: %w", cfg.SampleRate, cfg.BaudRate, ErrInvalidConfig)
	}

	if cfg.StopBits < 1 {
		return nil, fmt.Errorf("stop bits %v less than 1: %w", cfg.StopBits, ErrInvalidConfig)
	}

	var b = &baseband{spb: cfg.SampleRate / cfg.BaudRate, mark: -1} //nolint:exhaustruct
	if cfg.Polarity {
		b.mark = 1
	}

	var perChar = 1 + dataBits + cfg.StopBits
	b.result = make([]float64, 0, int(b.spb*(cfg.LeadBits+cfg.TailBits+perChar*float64(len(codes))))+1)

	b.put(true, cfg.LeadBits)

	for _, code := range codes {
		b.put(false, 1)
		for i := range dataBits {
			b.put(code&(1<<i) != 0, 1)
		}
		b.put(true, cfg.StopBits)
	}

	b.put(true, cfg.TailBits)

	return b.result, nil
}

// GenText is EncodeText followed by GenBaseband, starting in LETTERS.
func GenText(cfg GenConfig, text string) ([]float64, error) {
	var codes, _, err = EncodeText(text, Letters)
	if err != nil {
		return nil, err
	}

	return GenBaseband(cfg, codes)
}

/*------------------------------------------------------------------
 *
 * Name:	GenAFSK
 *
 * Purpose:	Convert baseband to audio frequency shift keying.
 *
 * Inputs:	line		- Output of GenBaseband.
 *
 *		markFreq,
 *		spaceFreq	- Tone frequencies in Hz.  Positive samples
 *				  get markFreq, so a line generated with
 *				  inverted polarity comes out with the shift
 *				  reversed, as the demodulator would see it.
 *
 *		amplitude	- Peak value, 0 to 1.
 *
 * Description:	Phase is continuous across tone changes, as a real
 *		FSK transmitter would be.
 *
 *------------------------------------------------------------------*/

func GenAFSK(line []float64, sampleRate float64, markFreq float64, spaceFreq float64, amplitude float64) []float64 {
	var audio = make([]float64, len(line))
	var phase float64

	for i, s := range line {
		var f = spaceFreq
		if s > 0 {
			f = markFreq
		}

		audio[i] = amplitude * math.Sin(phase)

		phase += 2 * math.Pi * f / sampleRate
		if phase >= 2*math.Pi {
			phase -= 2 * math.Pi
		}
	}

	return audio
}
