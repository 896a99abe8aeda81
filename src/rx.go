package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Receive chain: audio source, demodulator, decoder, and
 *		the places decoded text goes.
 *
 * Description:
 *
 *		source --> [AFSK demod] --> Stream/Decoder --> teleprinter --> stdout
 *		                                           \-> text clients, pty
 *		                                           \-> CSV log, one record per line
 *
 *		Baseband sources (already demodulated) skip the demod.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

const rxBufferSize = 4096

// Source of samples.  Read returns io.EOF when there are no more.
type Source interface {
	Name() string
	SampleRate() int
	Read(ctx context.Context, out []float64) (int, error)
	Close() error
}

// Baseband is implemented by sources that deliver signed line state
// rather than audio.
type Baseband interface {
	IsBaseband() bool
}

/*
 * Sources.
 */

type WAVSource struct {
	name string
	f    *os.File
	r    *WAVReader
}

// OpenWAVSource opens a .WAV file, or stdin for "-".
func OpenWAVSource(path string, channel int) (*WAVSource, error) {
	var f = os.Stdin
	if path != "-" {
		var err error

		f, err = os.Open(path) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("opening audio file: %w", err)
		}
	}

	var r, wavErr = NewWAVReader(f)
	if wavErr != nil {
		f.Close() //nolint:gosec
		return nil, fmt.Errorf("%s: %w", path, wavErr)
	}
	r.Channel = channel

	logger.Info("Audio file",
		"path", path,
		"rate", r.Format.SampleRate,
		"bits", r.Format.BitsPerSample,
		"channels", r.Format.Channels)

	return &WAVSource{name: path, f: f, r: r}, nil
}

func (s *WAVSource) Name() string    { return s.name }
func (s *WAVSource) SampleRate() int { return int(s.r.Format.SampleRate) }
func (s *WAVSource) Close() error    { return s.f.Close() }

func (s *WAVSource) Read(ctx context.Context, out []float64) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	return s.r.Read(out)
}

// RawSource reads little endian float32 baseband samples, e.g. from
// another program's demodulator.
type RawSource struct {
	name string
	rc   io.ReadCloser
	r    *bufio.Reader
	rate int
	buf  []float32
}

func NewRawSource(name string, rc io.ReadCloser, sampleRate int) *RawSource {
	return &RawSource{
		name: name,
		rc:   rc,
		r:    bufio.NewReader(rc),
		rate: sampleRate,
		buf:  make([]float32, rxBufferSize),
	}
}

func (s *RawSource) Name() string     { return s.name }
func (s *RawSource) SampleRate() int  { return s.rate }
func (s *RawSource) Close() error     { return s.rc.Close() }
func (s *RawSource) IsBaseband() bool { return true }

func (s *RawSource) Read(ctx context.Context, out []float64) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	var want = min(len(out), len(s.buf))
	var n = 0

	for n < want {
		var err = binary.Read(s.r, binary.LittleEndian, &s.buf[n])
		if err != nil {
			if n > 0 {
				break
			}

			// A partial sample at the end is ignored.
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, io.EOF
			}

			return 0, err
		}
		n++

		// Don't wait for a full buffer if the producer is slow.
		if s.r.Buffered() < 4 {
			break
		}
	}

	for i := range n {
		out[i] = float64(s.buf[i])
	}

	return n, nil
}

/*
 * Teleprinter: turn the character stream into lines for humans.
 */

type teleprinter struct {
	w         io.Writer
	tsFormat  *strftime.Strftime
	atStart   bool
	line      strings.Builder
	onLine    func(string)
	now       func() time.Time
	lineCount int
}

func newTeleprinter(w io.Writer, timestampFormat string, onLine func(string)) (*teleprinter, error) {
	var t = &teleprinter{w: w, atStart: true, onLine: onLine, now: time.Now} //nolint:exhaustruct

	if timestampFormat != "" {
		var f, err = strftime.New(timestampFormat)
		if err != nil {
			return nil, fmt.Errorf("timestamp format %q: %w", timestampFormat, ErrInvalidConfig)
		}
		t.tsFormat = f
	}

	return t, nil
}

// Write takes decoded characters.  NUL (from shift codes) is dropped,
// CR is dropped since LF always follows it.
func (t *teleprinter) Write(p []byte) (int, error) {
	var out = make([]byte, 0, len(p)+32)

	for _, c := range p {
		switch c {
		case 0, '\r':
			continue
		case '\n':
			out = append(out, c)
			t.endLine()
			continue
		}

		if t.atStart {
			if t.tsFormat != nil {
				out = append(out, t.tsFormat.FormatString(t.now())...)
				out = append(out, ' ')
			}
			t.atStart = false
		}

		out = append(out, c)
		t.line.WriteByte(c)
	}

	var _, err = t.w.Write(out)
	if err != nil {
		return 0, err
	}

	return len(p), nil
}

func (t *teleprinter) endLine() {
	if t.onLine != nil {
		t.onLine(t.line.String())
	}

	t.line.Reset()
	t.atStart = true
	t.lineCount++
}

// Flush ends a partial line at end of input.
func (t *teleprinter) Flush() error {
	if t.atStart {
		return nil
	}

	t.endLine()

	var _, err = t.w.Write([]byte{'\n'})

	return err
}

/*
 * Receiver.
 */

type Receiver struct {
	cfg *Config

	stdout  io.Writer
	extra   []io.Writer // Raw characters, e.g. text clients and pty.
	textLog *TextLog
	metrics *Metrics

	channel int
}

func NewReceiver(cfg *Config, stdout io.Writer) *Receiver {
	return &Receiver{cfg: cfg, stdout: stdout} //nolint:exhaustruct
}

// AddOutput sends every decoded character, NULs removed, to w as well.
func (r *Receiver) AddOutput(w io.Writer) {
	r.extra = append(r.extra, w)
}

func (r *Receiver) SetTextLog(l *TextLog) {
	r.textLog = l
}

func (r *Receiver) SetMetrics(m *Metrics) {
	r.metrics = m
}

// SetChannel is the number recorded in the text log.
func (r *Receiver) SetChannel(channel int) {
	r.channel = channel
}

type fanout []io.Writer

func (f fanout) Write(p []byte) (int, error) {
	var clean = StripNulls(p)

	for _, w := range f {
		var _, err = w.Write(clean)
		if err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

/*------------------------------------------------------------------
 *
 * Name:	Run
 *
 * Purpose:	Decode everything from one source.
 *
 * Returns:	Decoder totals, and nil at normal end of input or when
 *		ctx is cancelled.
 *
 * Description:	Each source gets a fresh decoder, starting in LETTERS.
 *
 *------------------------------------------------------------------*/

func (r *Receiver) Run(ctx context.Context, src Source) (DecoderStats, error) {
	var decoder, err = NewDecoder(float64(src.SampleRate()), r.cfg.Baud, r.cfg.MarkPositive())
	if err != nil {
		return DecoderStats{}, err //nolint:exhaustruct
	}

	var demod *AFSKDemodulator
	if bb, ok := src.(Baseband); !ok || !bb.IsBaseband() {
		var dc = r.cfg.DemodConfig()
		dc.SampleRate = float64(src.SampleRate())

		demod, err = NewAFSKDemodulator(dc)
		if err != nil {
			return DecoderStats{}, err //nolint:exhaustruct
		}
	}

	var tp, tpErr = newTeleprinter(r.stdout, r.cfg.TimestampFormat, func(line string) {
		if r.textLog != nil {
			var logErr = r.textLog.Write(r.channel, src.Name(), line)
			if logErr != nil {
				logger.Error("Text log", "err", logErr)
			}
		}
	})
	if tpErr != nil {
		return DecoderStats{}, tpErr //nolint:exhaustruct
	}

	var sinks = fanout{tp}
	sinks = append(sinks, r.extra...)

	var stream = NewStream(decoder, sinks)

	var stats = NewAudioStats(r.cfg.AudioStatsInterval)
	if r.metrics != nil {
		stats.OnLevel(r.metrics.SetAudioLevel)
	}

	logger.Debug("Decoder ready",
		"source", src.Name(),
		"samples_per_bit", decoder.SamplesPerBit(),
		"history", decoder.HistoryRequired(),
		"demod", demod != nil)

	var in = make([]float64, rxBufferSize)
	var baseband = make([]float64, 0, rxBufferSize)

	for {
		var n, readErr = src.Read(ctx, in)

		if readErr == nil {
			// An empty read is counted as an error.
			stats.Add(in[:n])
		}

		if n > 0 {
			var samples = in[:n]
			if demod != nil {
				baseband = demod.Process(in[:n], baseband[:0])
				samples = baseband
			}

			var _, writeErr = stream.Write(samples)
			if writeErr != nil {
				return decoder.Stats(), writeErr
			}

			if r.metrics != nil {
				r.metrics.AddSamples(len(samples))
				r.metrics.Observe(decoder.Stats())
			}
		}

		if readErr != nil {
			var flushErr = tp.Flush()

			if errors.Is(readErr, io.EOF) || errors.Is(readErr, context.Canceled) {
				return decoder.Stats(), flushErr
			}

			return decoder.Stats(), fmt.Errorf("reading %s: %w", src.Name(), readErr)
		}
	}
}
