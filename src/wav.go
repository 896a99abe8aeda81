package rtty

/*-------------------------------------------------------------------
 *
 * Purpose:     Read and write .WAV files of PCM audio.
 *
 * Description:	Enough of RIFF/WAVE for test recordings and the
 *		output of rtty-gen: 8 or 16 bit PCM, mono or stereo.
 *		Chunks we don't care about (LIST etc.) are skipped.
 *
 *--------------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	ErrNotWAV         = errors.New("not a RIFF/WAVE file")
	ErrUnsupportedWAV = errors.New("unsupported WAV format")
)

type WAVFormat struct {
	FormatTag     uint16 // 1 for PCM.
	Channels      uint16 // 1 for mono, 2 for stereo.
	SampleRate    uint32
	ByteRate      uint32 // = BlockAlign * SampleRate.
	BlockAlign    uint16 // = BitsPerSample/8 * Channels.
	BitsPerSample uint16 // 16 or 8.
}

type WAVReader struct {
	Format WAVFormat

	// Channel to extract from stereo files.
	Channel int

	r         *bufio.Reader
	remaining uint32 // Bytes left in the data chunk.
	frame     []byte
}

type chunkHeader struct {
	ID   [4]byte
	Size uint32
}

/*-------------------------------------------------------------------
 *
 * Name:        NewWAVReader
 *
 * Purpose:     Parse the header and position at the start of the samples.
 *
 * Returns:	Error wrapping ErrNotWAV or ErrUnsupportedWAV if the
 *		file isn't something we can decode.
 *
 *--------------------------------------------------------------------*/

func NewWAVReader(r io.Reader) (*WAVReader, error) {
	var w = &WAVReader{r: bufio.NewReader(r)} //nolint:exhaustruct

	var riff struct {
		RIFF     [4]byte
		FileSize uint32
		WAVE     [4]byte
	}

	var err = binary.Read(w.r, binary.LittleEndian, &riff)
	if err != nil {
		return nil, fmt.Errorf("reading RIFF header: %w: %w", ErrNotWAV, err)
	}

	if string(riff.RIFF[:]) != "RIFF" || string(riff.WAVE[:]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var haveFormat = false
	for {
		var ch chunkHeader

		err = binary.Read(w.r, binary.LittleEndian, &ch)
		if err != nil {
			return nil, fmt.Errorf("looking for data chunk: %w: %w", ErrNotWAV, err)
		}

		switch string(ch.ID[:]) {
		case "fmt ":
			if ch.Size < 16 {
				return nil, fmt.Errorf("fmt chunk of %d bytes: %w", ch.Size, ErrNotWAV)
			}

			err = binary.Read(w.r, binary.LittleEndian, &w.Format)
			if err != nil {
				return nil, fmt.Errorf("reading fmt chunk: %w", err)
			}

			err = w.skip(ch.Size - 16)
			if err != nil {
				return nil, err
			}

			haveFormat = true

		case "data":
			if !haveFormat {
				return nil, fmt.Errorf("data chunk before fmt chunk: %w", ErrNotWAV)
			}

			w.remaining = ch.Size

			err = w.checkFormat()
			if err != nil {
				return nil, err
			}

			return w, nil

		default:
			err = w.skip(ch.Size)
			if err != nil {
				return nil, err
			}
		}
	}
}

// Chunks are padded to an even length.
func (w *WAVReader) skip(n uint32) error {
	var _, err = w.r.Discard(int(n + n&1))
	if err != nil {
		return fmt.Errorf("skipping chunk: %w", err)
	}

	return nil
}

func (w *WAVReader) checkFormat() error {
	var f = w.Format

	if f.FormatTag != 1 {
		return fmt.Errorf("format tag %d, only PCM (1) is handled: %w", f.FormatTag, ErrUnsupportedWAV)
	}

	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("%d channels: %w", f.Channels, ErrUnsupportedWAV)
	}

	if f.BitsPerSample != 8 && f.BitsPerSample != 16 {
		return fmt.Errorf("%d bits per sample: %w", f.BitsPerSample, ErrUnsupportedWAV)
	}

	if f.SampleRate == 0 {
		return fmt.Errorf("sample rate 0: %w", ErrUnsupportedWAV)
	}

	w.frame = make([]byte, int(f.Channels)*int(f.BitsPerSample/8))

	return nil
}

// Read fills out with samples, scaled to -1 .. +1, from the selected channel.
// Returns io.EOF after the last sample.
func (w *WAVReader) Read(out []float64) (int, error) {
	var ch = min(max(w.Channel, 0), int(w.Format.Channels)-1)
	var n = 0

	for n < len(out) {
		if w.remaining < uint32(len(w.frame)) {
			if n == 0 {
				return 0, io.EOF
			}

			return n, nil
		}

		var _, err = io.ReadFull(w.r, w.frame)
		if err != nil {
			// Truncated file.  Treat like a normal end.
			w.remaining = 0
			if n == 0 {
				return 0, io.EOF
			}

			return n, nil
		}
		w.remaining -= uint32(len(w.frame))

		if w.Format.BitsPerSample == 16 {
			var v = int16(binary.LittleEndian.Uint16(w.frame[ch*2:]))
			out[n] = float64(v) / 32768
		} else {
			out[n] = (float64(w.frame[ch]) - 128) / 128
		}
		n++
	}

	return n, nil
}

/*-------------------------------------------------------------------
 *
 * Name:        WriteWAV
 *
 * Purpose:     Write mono 16 bit PCM.
 *
 * Inputs:	samples	- Clipped to -1 .. +1.
 *
 *--------------------------------------------------------------------*/

func WriteWAV(w io.Writer, sampleRate int, samples []float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate %d: %w", sampleRate, ErrInvalidConfig)
	}

	var dataSize = uint32(len(samples) * 2)

	var header = struct {
		RIFF     [4]byte
		FileSize uint32
		WAVE     [4]byte
		FmtID    [4]byte
		FmtSize  uint32
		Format   WAVFormat
		DataID   [4]byte
		DataSize uint32
	}{
		RIFF:     [4]byte{'R', 'I', 'F', 'F'},
		FileSize: 36 + dataSize,
		WAVE:     [4]byte{'W', 'A', 'V', 'E'},
		FmtID:    [4]byte{'f', 'm', 't', ' '},
		FmtSize:  16,
		Format: WAVFormat{
			FormatTag:     1,
			Channels:      1,
			SampleRate:    uint32(sampleRate),
			ByteRate:      uint32(sampleRate) * 2,
			BlockAlign:    2,
			BitsPerSample: 16,
		},
		DataID:   [4]byte{'d', 'a', 't', 'a'},
		DataSize: dataSize,
	}

	var bw = bufio.NewWriter(w)

	var err = binary.Write(bw, binary.LittleEndian, &header)
	if err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	var buf [2]byte
	for _, s := range samples {
		var v = math.Round(max(-1, min(1, s)) * 32767)
		binary.LittleEndian.PutUint16(buf[:], uint16(int16(v)))

		_, err = bw.Write(buf[:])
		if err != nil {
			return fmt.Errorf("writing WAV samples: %w", err)
		}
	}

	return bw.Flush()
}
