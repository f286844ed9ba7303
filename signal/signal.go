// Package signal provides buffers for finished frames and conversions
// required by output devices:
//   - sum frames of several sinks into one
//   - convert non-interleaved float data to interleaved ints and floats
package signal

import (
	"math"
	"time"
)

// Float64 is a non-interleaved float64 signal: [channel][sample].
type Float64 [][]float64

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// BitDepth contains values required for float to int conversion.
type BitDepth int

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() int {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8 - 1
	case BitDepth16:
		return math.MaxInt16 - 1
	case BitDepth24:
		return 1<<23 - 2
	case BitDepth32:
		return math.MaxInt32 - 1
	default:
		return 1
	}
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// EmptyFloat64 returns an empty buffer of specified dimentions.
func EmptyFloat64(numChannels int, bufferSize int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, bufferSize)
	}
	return result
}

// NumChannels returns number of channels in this sample slice
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns number of samples in single block in this sample slice
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Copy returns a deep copy of the buffer.
func (floats Float64) Copy() Float64 {
	if floats == nil {
		return nil
	}
	result := make([][]float64, len(floats))
	for i := range floats {
		result[i] = append(make([]float64, 0, len(floats[i])), floats[i]...)
	}
	return result
}

// Add sums source into the buffer sample by sample. Channels and samples
// that don't exist in the buffer are ignored.
func (floats Float64) Add(source Float64) {
	for c := 0; c < len(floats) && c < len(source); c++ {
		for i := 0; i < len(floats[c]) && i < len(source[c]); i++ {
			floats[c][i] += source[c][i]
		}
	}
}

// Clear sets all samples to zero.
func (floats Float64) Clear() {
	for c := range floats {
		for i := range floats[c] {
			floats[c][i] = 0
		}
	}
}

// AsInterInt converts float64 signal to interleaved int.
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	var numChannels int
	if numChannels = len(floats); numChannels == 0 {
		return nil
	}

	// determine the multiplier for bit depth conversion
	multiplier := float64(bitDepth.multiplier())

	ints := make([]int, len(floats[0])*numChannels)

	for j := range floats {
		for i := range floats[j] {
			ints[i*numChannels+j] = int(floats[j][i] * multiplier)
		}
	}
	return ints
}

// AsInterFloat32 writes float64 signal into interleaved float32 buffer.
// The buffer must fit Size()*NumChannels() samples.
func (floats Float64) AsInterFloat32(buf []float32) {
	numChannels := len(floats)
	for j := range floats {
		for i := range floats[j] {
			buf[i*numChannels+j] = float32(floats[j][i])
		}
	}
}
