package wav_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/aim/signal"
	wavsink "pipelined.dev/aim/wav"
)

func TestSink(t *testing.T) {
	tests := []struct {
		bitDepth    signal.BitDepth
		numChannels int
		bufferSize  int
		frames      int
	}{
		{bitDepth: signal.BitDepth16, numChannels: 1, bufferSize: 8, frames: 3},
		{bitDepth: signal.BitDepth16, numChannels: 2, bufferSize: 16, frames: 2},
		{bitDepth: signal.BitDepth24, numChannels: 2, bufferSize: 4, frames: 5},
	}
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "out.wav")
		sink, err := wavsink.NewSink(path, test.bitDepth)
		require.NoError(t, err)

		fn, err := sink.Sink("main", 44100, test.numChannels, test.bufferSize)
		require.NoError(t, err)
		b := signal.EmptyFloat64(test.numChannels, test.bufferSize)
		for c := range b {
			for i := range b[c] {
				b[c][i] = 0.5
			}
		}
		for i := 0; i < test.frames; i++ {
			require.NoError(t, fn(b))
		}
		require.NoError(t, sink.Flush("main"))

		f, err := os.Open(path)
		require.NoError(t, err)
		d := wav.NewDecoder(f)
		buf, err := d.FullPCMBuffer()
		require.NoError(t, err)
		assert.NoError(t, f.Close())

		assert.Equal(t, 44100, int(d.SampleRate))
		assert.Equal(t, int(test.bitDepth), int(d.BitDepth))
		assert.Equal(t, test.numChannels, buf.Format.NumChannels)
		assert.Equal(t, test.numChannels*test.bufferSize*test.frames, len(buf.Data))
		assert.Equal(t, b.AsInterInt(test.bitDepth)[0], buf.Data[0])
	}
}

func TestNewSinkBitDepth(t *testing.T) {
	_, err := wavsink.NewSink("out.wav", signal.BitDepth(12))
	assert.ErrorIs(t, err, wavsink.ErrUnsupportedBitDepth)
}

func TestFlushNotStarted(t *testing.T) {
	sink, err := wavsink.NewSink("out.wav", signal.BitDepth16)
	require.NoError(t, err)
	assert.NoError(t, sink.Flush("main"))
}
