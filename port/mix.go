package port

import (
	"fmt"

	"pipelined.dev/aim/signal"
)

// MixSignal overwrites dst with the sum of all voices. Values are not
// normalized. Zero voices give silence.
func MixSignal(dst []float64, voices [][]float64) {
	for i := range dst {
		dst[i] = 0
	}
	for _, v := range voices {
		for i := 0; i < len(dst) && i < len(v); i++ {
			dst[i] += v[i]
		}
	}
}

// MixAudio overwrites dst with the per-channel sum of all voices. Voice
// channels beyond dst channels are dropped.
func MixAudio(dst signal.Float64, voices []signal.Float64) {
	for c := range dst {
		for i := range dst[c] {
			dst[c][i] = 0
		}
	}
	for _, v := range voices {
		for c := 0; c < len(dst) && c < len(v); c++ {
			for i := 0; i < len(dst[c]) && i < len(v[c]); i++ {
				dst[c][i] += v[c][i]
			}
		}
	}
}

// Mix sums all voices of an outlet into dst. Signal voices are mixed into
// the first channel and copied to the rest, audio voices are mixed channel
// by channel.
func Mix(dst signal.Float64, o *Outlet) error {
	if dst.NumChannels() == 0 {
		return nil
	}
	switch o.Kind {
	case Signal:
		MixSignal(dst[0], o.Signal)
		for c := 1; c < len(dst); c++ {
			copy(dst[c], dst[0])
		}
	case Audio:
		MixAudio(dst, o.Audio)
	default:
		return fmt.Errorf("mix %v: %w", o.Kind, ErrUnsupportedKind)
	}
	return nil
}
