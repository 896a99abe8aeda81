package rtty

/*-------------------------------------------------------------------
 *
 * Purpose:     Receive RTTY and print the text.
 *
 * Inputs:	.WAV files, raw baseband, or the sound card.
 *
 * Description:	For example
 *
 *			rtty-gen -o test.wav "RYRYRY CQ CQ DE N0CALL"
 *			rtty-rx test.wav
 *
 *		or listen to a receiver connected to the sound card:
 *
 *			rtty-rx --soundcard -r 48000 -T "%H:%M:%S" --text-port 8010
 *
 *--------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/pflag"
)

func RttyRxMain() {
	var configFile = pflag.StringP("config", "c", "", "Configuration file (YAML).")
	var sampleRate = pflag.IntP("sample-rate", "r", 44100, "Audio sample rate for the sound card and raw input.  .WAV files carry their own.")
	var baud = pflag.Float64P("baud", "B", DefaultBaud, "Bits per second.")
	var inverted = pflag.Bool("inverted", false, "Mark is the negative half of the baseband (reversed shift).")
	var markFreq = pflag.Float64("mark", DefaultMarkFreq, "Mark tone, Hz.")
	var spaceFreq = pflag.Float64("space", DefaultSpaceFreq, "Space tone, Hz.")
	var raw = pflag.Bool("raw", false, `Input is demodulated baseband, little endian float32,
positive for mark, rather than audio.  Use - for stdin.`)
	var soundcard = pflag.Bool("soundcard", false, "Listen to the default sound card input.")
	var channel = pflag.IntP("channel", "C", 0, "Channel of stereo .WAV files: 0 = left, 1 = right.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede each line with a timestamp in strftime format, e.g. \"%H:%M:%S\".")
	var textPort = pflag.Int("text-port", 0, "TCP port for text client applications.  0 to disable.")
	var dnsSDName = pflag.String("dns-sd-name", "", "Name to announce the text port with DNS-SD.")
	var metricsAddr = pflag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9110.")
	var usePty = pflag.Bool("pty", false, "Copy decoded text to a pseudo terminal.")
	var logFile = pflag.StringP("log-file", "L", "", "Append decoded lines, CSV format, to this file.")
	var logDir = pflag.StringP("log-dir", "l", "", "Directory for daily CSV logs of decoded lines.")
	var logLevel = pflag.String("log-level", "info", "Diagnostic messages: debug, info, warn, error.")
	var audioStats = pflag.IntP("audio-stats", "a", 100, "Audio level report interval in seconds.  0 to disable.")
	var errorIfLessThan = pflag.Int("error-if-less-than", -1, "Exit with an error if fewer characters than this are decoded.")
	var version = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s decodes 5 bit Baudot RTTY and prints the text.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... [FILE]...\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "$ rtty-gen -o test.wav \"RYRYRY CQ CQ\"\n")
		fmt.Fprintf(os.Stderr, "$ rtty-rx test.wav\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "$ rtty-gen --raw -r 8000 \"TEST 123\" | rtty-rx --raw -r 8000 -\n")
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version {
		PrintVersion(os.Stdout, "rtty-rx", false)
		return
	}

	/*
	 * Defaults, then config file, then whatever was on the command line.
	 */

	var cfg = DefaultConfig()
	if *configFile != "" {
		var err error

		cfg, err = LoadConfigFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
	}

	var changed = pflag.CommandLine.Changed

	if changed("sample-rate") {
		cfg.SampleRate = *sampleRate
	}
	if changed("baud") {
		cfg.Baud = *baud
	}
	if changed("inverted") {
		cfg.Polarity = "normal"
		if *inverted {
			cfg.Polarity = "inverted"
		}
	}
	if changed("mark") {
		cfg.MarkFreq = *markFreq
	}
	if changed("space") {
		cfg.SpaceFreq = *spaceFreq
	}
	if changed("timestamp-format") {
		cfg.TimestampFormat = *timestampFormat
	}
	if changed("text-port") {
		cfg.TextPort = *textPort
	}
	if changed("dns-sd-name") {
		cfg.DNSSDName = *dnsSDName
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = *metricsAddr
	}
	if changed("pty") {
		cfg.Pty = *usePty
	}
	if changed("log-file") {
		cfg.LogFile = *logFile
	}
	if changed("log-dir") {
		cfg.LogDir = *logDir
	}
	if changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if changed("audio-stats") {
		cfg.AudioStatsInterval = *audioStats
	}

	var err = cfg.Validate()
	if err == nil {
		err = SetLogLevel(cfg.LogLevel)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		pflag.Usage()
		os.Exit(1)
	}

	var args = pflag.Args()
	if *soundcard == (len(args) > 0) {
		fmt.Fprintf(os.Stderr, "Give either --soundcard or one or more files, not both.\n")
		pflag.Usage()
		os.Exit(1)
	}

	var total, runErr = runReceiver(cfg, args, *soundcard, *raw, *channel)
	if runErr != nil {
		logger.Error("Receive failed", "err", runErr)
		os.Exit(1)
	}

	if *errorIfLessThan >= 0 && total < uint64(*errorIfLessThan) {
		fmt.Fprintf(os.Stderr, "\n * * * TEST FAILED: number decoded is less than %d * * * \n", *errorIfLessThan)
		os.Exit(1)
	}
}

// runReceiver sets up the outputs and decodes each source in turn.
// Returns the number of characters decoded, shift codes excluded.
func runReceiver(cfg *Config, args []string, soundcard bool, raw bool, channel int) (uint64, error) {
	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	// Background services stop when this returns.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var rx = NewReceiver(cfg, os.Stdout)
	rx.SetChannel(channel)

	if cfg.LogFile != "" || cfg.LogDir != "" {
		var tl = NewTextLog(cfg.LogDir != "", cfg.LogDir+cfg.LogFile)
		defer tl.Close()

		rx.SetTextLog(tl)
	}

	if cfg.MetricsAddr != "" {
		var m = NewMetrics()
		rx.SetMetrics(m)

		wg.Go(func() {
			var serveErr = m.Serve(ctx, cfg.MetricsAddr)
			if serveErr != nil {
				logger.Error("Metrics server", "err", serveErr)
			}
		})
	}

	if cfg.TextPort != 0 {
		var ts, tsErr = NewTextServer(cfg.TextPort)
		if tsErr != nil {
			return 0, tsErr
		}
		rx.AddOutput(ts)

		wg.Go(func() {
			var serveErr = ts.Serve(ctx)
			if serveErr != nil {
				logger.Error("Text server", "err", serveErr)
			}
		})

		DNSSDAnnounce(ctx, cfg.DNSSDName, ts.Port())
	}

	if cfg.Pty {
		var p, ptyErr = NewPtyOutput()
		if ptyErr != nil {
			return 0, ptyErr
		}
		defer p.Close()

		rx.AddOutput(p)
	}

	var total uint64

	var decodeFrom = func(src Source) error {
		defer src.Close()

		var stats, runErr = rx.Run(ctx, src)
		total += stats.Characters - stats.FiguresShifts - stats.LettersShifts

		logger.Debug("Done", "source", src.Name(),
			"frames", stats.FramesStarted,
			"characters", stats.Characters,
			"framing_errors", stats.FramingErrors)

		return runErr
	}

	if soundcard {
		var sc, scErr = OpenSoundcard(cfg.SampleRate)
		if scErr != nil {
			return 0, scErr
		}

		var decodeErr = decodeFrom(sc)

		return total, decodeErr
	}

	for _, path := range args {
		if ctx.Err() != nil {
			break
		}

		var src Source

		if raw {
			var f = os.Stdin
			if path != "-" {
				var openErr error

				f, openErr = os.Open(path) //nolint:gosec
				if openErr != nil {
					return total, fmt.Errorf("opening baseband file: %w", openErr)
				}
			}
			src = NewRawSource(path, f, cfg.SampleRate)
		} else {
			var wavSrc, wavErr = OpenWAVSource(path, channel)
			if wavErr != nil {
				if errors.Is(wavErr, ErrNotWAV) && strings.HasSuffix(strings.ToLower(path), ".raw") {
					logger.Warn("Looks like raw baseband, try --raw", "path", path)
				}

				return total, wavErr
			}
			src = wavSrc
		}

		var decodeErr = decodeFrom(src)
		if decodeErr != nil {
			return total, decodeErr
		}
	}

	return total, nil
}
