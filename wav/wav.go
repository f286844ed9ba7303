// Package wav provides a sink that saves module output to wav file.
package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"pipelined.dev/aim/signal"
)

const pcmFormat = 1

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32 bit depth is supported")

// Sink saves audio to wav file. It's created on Sink call and closed on
// Flush.
type Sink struct {
	path     string
	bitDepth signal.BitDepth
	file     *os.File
	encoder  *wav.Encoder
}

// NewSink creates new wav sink.
func NewSink(path string, bitDepth signal.BitDepth) (*Sink, error) {
	switch bitDepth {
	case signal.BitDepth8, signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
	default:
		return nil, fmt.Errorf("bit depth %d: %w", bitDepth, ErrUnsupportedBitDepth)
	}
	return &Sink{
		path:     path,
		bitDepth: bitDepth,
	}, nil
}

// Sink creates the file and returns the function that encodes frames.
func (s *Sink) Sink(moduleID string, sampleRate, numChannels, bufferSize int) (func(signal.Float64) error, error) {
	f, err := os.Create(s.path)
	if err != nil {
		return nil, err
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, sampleRate, int(s.bitDepth), numChannels, pcmFormat)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: int(s.bitDepth),
	}
	return func(b signal.Float64) error {
		ib.Data = b.AsInterInt(s.bitDepth)
		return s.encoder.Write(ib)
	}, nil
}

// Flush finalizes the header and closes the file.
func (s *Sink) Flush(string) error {
	if s.file == nil {
		return nil
	}
	defer func() {
		s.file, s.encoder = nil, nil
	}()
	if err := s.encoder.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
