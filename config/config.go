// Package config loads settings of aim projects.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pipelined.dev/aim/node"
	"pipelined.dev/aim/signal"
)

// File is the name of the config file in the project directory.
const File = "aim.yaml"

// Outputs.
const (
	OutputPortaudio = "portaudio"
	OutputWav       = "wav"
	OutputNone      = "none"
)

// ErrInvalid is returned when config values can't be used.
var ErrInvalid = errors.New("invalid config")

type (
	// Config of a run.
	Config struct {
		SampleRate int     `yaml:"sample_rate"`
		BufferSize int     `yaml:"buffer_size"`
		Frames     int     `yaml:"frames"`
		Output     string  `yaml:"output"`
		Buffers    int     `yaml:"buffers"`
		Wav        Wav     `yaml:"wav"`
		Metrics    Metrics `yaml:"metrics"`
	}

	// Wav output settings.
	Wav struct {
		Path     string `yaml:"path"`
		BitDepth int    `yaml:"bit_depth"`
	}

	// Metrics endpoint settings. Empty address disables it.
	Metrics struct {
		Addr string `yaml:"addr"`
	}
)

// Default returns config with default values.
func Default() Config {
	return Config{
		SampleRate: 44100,
		BufferSize: 512,
		Frames:     -1,
		Output:     OutputPortaudio,
		Buffers:    4,
		Wav: Wav{
			Path:     "out.wav",
			BitDepth: int(signal.BitDepth16),
		},
	}
}

// Load reads config from path on top of defaults. Missing file gives
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks config values.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, c.SampleRate)
	case c.BufferSize <= 0:
		return fmt.Errorf("%w: buffer size %d", ErrInvalid, c.BufferSize)
	case c.Buffers <= 0:
		return fmt.Errorf("%w: buffers %d", ErrInvalid, c.Buffers)
	}
	switch c.Output {
	case OutputPortaudio, OutputNone:
	case OutputWav:
		if c.Wav.Path == "" {
			return fmt.Errorf("%w: empty wav path", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown output %q", ErrInvalid, c.Output)
	}
	return nil
}

// Environment returns node environment of the config.
func (c Config) Environment() node.Environment {
	return node.Environment{
		BufferSize: c.BufferSize,
		SampleRate: c.SampleRate,
	}
}
