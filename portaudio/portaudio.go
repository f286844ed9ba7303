// Package portaudio provides a sink that plays module output on the
// default device.
package portaudio

import (
	"github.com/gordonklaus/portaudio"

	"pipelined.dev/aim/signal"
)

// Sink represets portaudio sink which allows to play audio using default
// device.
type Sink struct {
	buf    []float32
	stream *portaudio.Stream
}

// NewSink returns new sink for the default output device.
func NewSink() *Sink {
	return &Sink{}
}

// Sink initializes portaudio api and starts the default stream.
func (s *Sink) Sink(moduleID string, sampleRate, numChannels, bufferSize int) (func(signal.Float64) error, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s.buf = make([]float32, bufferSize*numChannels)
	stream, err := portaudio.OpenDefaultStream(0, numChannels, float64(sampleRate), bufferSize, &s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return func(b signal.Float64) error {
		b.AsInterFloat32(s.buf)
		return s.stream.Write()
	}, nil
}

// Flush stops the stream and terminates portaudio.
func (s *Sink) Flush(string) error {
	if s.stream == nil {
		return nil
	}
	defer func() { s.stream = nil }()
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
