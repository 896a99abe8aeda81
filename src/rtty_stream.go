package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Drive a Decoder from an open ended stream of samples.
 *
 * Description:	The decoder only looks at one window at a time and
 *		says how much of it was used.  Something has to keep the
 *		rest, append the next batch, and call again.  That is
 *		what a flow graph scheduler does for a block; this is a
 *		minimal version of it for one input and one output.
 *
 *		Output is requested in multiples of 10 characters, and
 *		we keep calling while the decoder makes progress.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
)

const streamOutputMultiple = 10

type Stream struct {
	decoder *Decoder
	w       io.Writer

	buf []float64

	samplesIn  uint64
	charsOut   uint64
	onDecoded  func([]byte)
	outputSize int
}

func NewStream(d *Decoder, w io.Writer) *Stream {
	var s = &Stream{ //nolint:exhaustruct
		decoder:    d,
		w:          w,
		outputSize: streamOutputMultiple,
	}

	// Room for the look-back plus enough for one batch of characters.
	s.buf = make([]float64, 0, d.HistoryRequired()+d.RequiredInputFor(s.outputSize))

	return s
}

// OnDecoded registers a function called with every batch of decoded
// characters, before they are written out.
func (s *Stream) OnDecoded(fn func([]byte)) {
	s.onDecoded = fn
}

// Write implements io.Writer style semantics for samples.
// It always accepts every sample; the error is from the output writer.
func (s *Stream) Write(samples []float64) (int, error) {
	s.buf = append(s.buf, samples...)
	s.samplesIn += uint64(len(samples))

	for {
		var out, consumed = s.decoder.Decode(s.buf, s.outputSize)

		if consumed > 0 {
			// Shift down rather than reslice so the backing array doesn't grow forever.
			var n = copy(s.buf, s.buf[consumed:])
			s.buf = s.buf[:n]
		}

		if len(out) > 0 {
			s.charsOut += uint64(len(out))

			if s.onDecoded != nil {
				s.onDecoded(out)
			}

			var _, err = s.w.Write(out)
			if err != nil {
				return len(samples), fmt.Errorf("writing decoded text: %w", err)
			}
		}

		if consumed == 0 && len(out) == 0 {
			return len(samples), nil
		}
	}
}

// Buffered is the number of samples held back for the next call.
func (s *Stream) Buffered() int {
	return len(s.buf)
}

func (s *Stream) Decoder() *Decoder {
	return s.decoder
}

// Totals returns samples accepted and characters produced so far.
func (s *Stream) Totals() (samples uint64, chars uint64) {
	return s.samplesIn, s.charsOut
}
