package rtty

/*-------------------------------------------------------------------
 *
 * Purpose:     Generate RTTY test signals.
 *
 * Description:	Text comes from the command line or, if there is none,
 *		from stdin.  Output is a .WAV file of AFSK audio, or raw
 *		baseband (little endian float32) for rtty-rx --raw.
 *
 *--------------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

func RttyGenMain() {
	var configFile = pflag.StringP("config", "c", "", "Configuration file (YAML).  Only the modem settings are used.")
	var output = pflag.StringP("output", "o", "", "Output file.  Default is stdout for --raw; required for .WAV.")
	var raw = pflag.Bool("raw", false, "Write baseband as little endian float32 instead of .WAV audio.")
	var sampleRate = pflag.IntP("sample-rate", "r", 44100, "Samples per second.")
	var baud = pflag.Float64P("baud", "B", DefaultBaud, "Bits per second.")
	var inverted = pflag.Bool("inverted", false, "Reverse the shift: mark is negative baseband.")
	var markFreq = pflag.Float64("mark", DefaultMarkFreq, "Mark tone, Hz.")
	var spaceFreq = pflag.Float64("space", DefaultSpaceFreq, "Space tone, Hz.")
	var stopBits = pflag.Float64P("stop-bits", "s", 1.5, "Stop bit length in bit times, at least 1.")
	var amplitude = pflag.IntP("amplitude", "a", 50, "Audio amplitude, percent of full scale.")
	var noNewline = pflag.BoolP("no-newline", "n", false, "Don't end with carriage return and line feed.")
	var version = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s generates 5 bit Baudot RTTY for testing.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... [TEXT]...\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Characters without a Baudot code are an error.  Lower case is sent as upper case.\n")
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version {
		PrintVersion(os.Stdout, "rtty-gen", false)
		return
	}

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
	if changed("stop-bits") {
		cfg.StopBits = *stopBits
	}

	if *amplitude < 0 || *amplitude > 100 {
		fmt.Fprintf(os.Stderr, "Amplitude must be 0 to 100, not %d.\n", *amplitude)
		pflag.Usage()
		os.Exit(1)
	}

	if !*raw && *output == "" {
		fmt.Fprintf(os.Stderr, "An output file (-o) is required for .WAV.\n")
		pflag.Usage()
		os.Exit(1)
	}

	var err = cfg.Validate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		pflag.Usage()
		os.Exit(1)
	}

	var text string
	if pflag.NArg() > 0 {
		text = strings.Join(pflag.Args(), " ")
	} else {
		var in, readErr = io.ReadAll(os.Stdin)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Reading stdin: %s\n", readErr)
			os.Exit(1)
		}
		text = strings.TrimRight(string(in), "\r\n")
	}

	// Teleprinters want CR LF; a bare LF from stdin becomes CR LF too.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	if !*noNewline {
		text += "\r\n"
	}

	err = genToFile(cfg, text, *output, *raw, float64(*amplitude)/100)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func genToFile(cfg *Config, text string, output string, raw bool, amplitude float64) error {
	var gc = cfg.GenConfig()

	var line, err = GenText(gc, text)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" && output != "-" {
		var f, createErr = os.Create(output) //nolint:gosec
		if createErr != nil {
			return fmt.Errorf("can't create output file: %w", createErr)
		}
		defer f.Close()

		w = f
	}

	if raw {
		return writeRawBaseband(w, line)
	}

	var dc = cfg.DemodConfig()

	err = dc.Validate()
	if err != nil {
		return err
	}

	var audio = GenAFSK(line, gc.SampleRate, dc.MarkFreq, dc.SpaceFreq, amplitude)

	logger.Info("Generated", "characters", len(text), "samples", len(audio), "output", output)

	return WriteWAV(w, cfg.SampleRate, audio)
}

func writeRawBaseband(w io.Writer, line []float64) error {
	var bw = bufio.NewWriter(w)

	var buf = make([]float32, len(line))
	for i, s := range line {
		buf[i] = float32(s)
	}

	var err = binary.Write(bw, binary.LittleEndian, buf)
	if err != nil {
		return fmt.Errorf("writing baseband: %w", err)
	}

	return bw.Flush()
}
