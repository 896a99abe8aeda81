package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Receiver configuration.
 *
 * Description:	Defaults, then an optional YAML file, then command
 *		line options, each overriding the one before.
 *
 *		Example rtty.yaml:
 *
 *			sample_rate: 48000
 *			baud: 45.45
 *			polarity: normal
 *			mark_freq: 2125
 *			space_freq: 2295
 *			timestamp_format: "%H:%M:%S"
 *			text_port: 8010
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SampleRate int     `yaml:"sample_rate"`
	Baud       float64 `yaml:"baud"`
	Polarity   string  `yaml:"polarity"` // "normal" (mark positive) or "inverted".
	MarkFreq   float64 `yaml:"mark_freq"`
	SpaceFreq  float64 `yaml:"space_freq"`

	// Stop bits, for rtty-gen only.  The receiver just looks for mark.
	StopBits float64 `yaml:"stop_bits"`

	TimestampFormat string `yaml:"timestamp_format"`

	TextPort  int    `yaml:"text_port"` // 0 to disable.
	DNSSDName string `yaml:"dns_sd_name"`

	MetricsAddr string `yaml:"metrics_addr"` // e.g. ":9110", empty to disable.

	Pty bool `yaml:"pty"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	LogDir   string `yaml:"log_dir"`

	AudioStatsInterval int `yaml:"audio_stats_interval"` // Seconds, 0 to disable.
}

func DefaultConfig() *Config {
	return &Config{
		SampleRate:         44100,
		Baud:               DefaultBaud,
		Polarity:           "normal",
		MarkFreq:           DefaultMarkFreq,
		SpaceFreq:          DefaultSpaceFreq,
		StopBits:           1.5,
		TimestampFormat:    "",
		TextPort:           0,
		DNSSDName:          "",
		MetricsAddr:        "",
		Pty:                false,
		LogLevel:           "info",
		LogFile:            "",
		LogDir:             "",
		AudioStatsInterval: 100,
	}
}

// LoadConfig reads YAML over the top of the defaults.
// Unknown keys are an error so typos don't go unnoticed.
func LoadConfig(r io.Reader) (*Config, error) {
	var c = DefaultConfig()

	var data, err = io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var dec = yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(c)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func LoadConfigFile(path string) (*Config, error) {
	var f, err = os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	var c, loadErr = LoadConfig(f)
	if loadErr != nil {
		return nil, fmt.Errorf("%s: %w", path, loadErr)
	}

	return c, nil
}

// MarkPositive translates the polarity setting for the decoder.
func (c *Config) MarkPositive() bool {
	return !strings.EqualFold(c.Polarity, "inverted")
}

func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate %d: %w", c.SampleRate, ErrInvalidConfig)
	}

	if !(c.Baud > 0) {
		return fmt.Errorf("baud %v: %w", c.Baud, ErrInvalidConfig)
	}

	switch strings.ToLower(c.Polarity) {
	case "normal", "inverted":
	default:
		return fmt.Errorf("polarity %q, expected normal or inverted: %w", c.Polarity, ErrInvalidConfig)
	}

	if c.StopBits < 1 {
		return fmt.Errorf("stop_bits %v: %w", c.StopBits, ErrInvalidConfig)
	}

	if c.TextPort < 0 || c.TextPort > 65535 {
		return fmt.Errorf("text_port %d: %w", c.TextPort, ErrInvalidConfig)
	}

	if c.LogFile != "" && c.LogDir != "" {
		return fmt.Errorf("log_file and log_dir are mutually exclusive: %w", ErrInvalidConfig)
	}

	if c.AudioStatsInterval < 0 {
		return fmt.Errorf("audio_stats_interval %d: %w", c.AudioStatsInterval, ErrInvalidConfig)
	}

	// Tones are checked when a demodulator is made; raw baseband input has none.
	return nil
}

func (c *Config) DecoderConfig() DecoderConfig {
	return DecoderConfig{
		SampleRate: float64(c.SampleRate),
		BaudRate:   c.Baud,
		Polarity:   c.MarkPositive(),
	}
}

func (c *Config) DemodConfig() DemodConfig {
	return DemodConfig{
		SampleRate: float64(c.SampleRate),
		BaudRate:   c.Baud,
		MarkFreq:   c.MarkFreq,
		SpaceFreq:  c.SpaceFreq,
	}
}

func (c *Config) GenConfig() GenConfig {
	var g = DefaultGenConfig(float64(c.SampleRate))
	g.BaudRate = c.Baud
	g.Polarity = c.MarkPositive()
	g.StopBits = c.StopBits

	return g
}
