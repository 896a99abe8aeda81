package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Read audio from the default sound card input.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Samples per read, about 1/10 second at common rates.
const soundcardFramesPerBuffer = 4096

type SoundcardSource struct {
	stream *portaudio.Stream
	buf    []float32
	rate   int
}

/*------------------------------------------------------------------
 *
 * Name:	OpenSoundcard
 *
 * Purpose:	Open the default input device, mono, at the given rate.
 *
 * Description:	Close must be called to release PortAudio.
 *
 *------------------------------------------------------------------*/

func OpenSoundcard(sampleRate int) (*SoundcardSource, error) {
	var err = portaudio.Initialize()
	if err != nil {
		return nil, fmt.Errorf("initializing PortAudio: %w", err)
	}

	var s = &SoundcardSource{ //nolint:exhaustruct
		buf:  make([]float32, soundcardFramesPerBuffer),
		rate: sampleRate,
	}

	s.stream, err = portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(s.buf), s.buf)
	if err != nil {
		portaudio.Terminate() //nolint:errcheck
		return nil, fmt.Errorf("opening audio input: %w", err)
	}

	err = s.stream.Start()
	if err != nil {
		s.stream.Close()      //nolint:errcheck
		portaudio.Terminate() //nolint:errcheck

		return nil, fmt.Errorf("starting audio input: %w", err)
	}

	logger.Info("Audio input opened", "rate", sampleRate)

	return s, nil
}

func (s *SoundcardSource) Name() string {
	return "soundcard"
}

func (s *SoundcardSource) SampleRate() int {
	return s.rate
}

// Read blocks until a buffer of samples is available.
func (s *SoundcardSource) Read(ctx context.Context, out []float64) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	var err = s.stream.Read()
	if err != nil {
		// Overflow just means we lost some; audio stats will count it.
		logger.Warn("Audio input error", "err", err)
		return 0, nil
	}

	var n = min(len(out), len(s.buf))
	for i := range n {
		out[i] = float64(s.buf[i])
	}

	return n, nil
}

func (s *SoundcardSource) Close() error {
	s.stream.Stop() //nolint:errcheck

	var err = s.stream.Close()

	portaudio.Terminate() //nolint:errcheck

	return err
}
