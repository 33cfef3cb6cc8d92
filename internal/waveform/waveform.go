// Package waveform reduces decoded sample data to a fixed-width peak envelope
// for display.
package waveform

import (
	"errors"
	"fmt"

	"github.com/maauso/audiocut/internal/audio"
)

// ErrInvalidWidth is returned when the requested envelope width is not positive.
var ErrInvalidWidth = errors.New("waveform width must be positive")

// Envelope is a peak-amplitude summary of one channel.
type Envelope struct {
	// Peaks holds one non-negative amplitude per display column.
	Peaks []float32 `json:"peaks"`
	// Duration is the length of the summarized audio in seconds.
	Duration float64 `json:"duration"`
	// SampleRate is the sample rate of the summarized audio.
	SampleRate int `json:"sample_rate"`
}

// Resolution returns the number of peaks.
func (e Envelope) Resolution() int {
	return len(e.Peaks)
}

// Reduce splits samples into width windows of floor(len(samples)/width)
// samples each and returns the maximum absolute value of every window.
//
// Samples past width*windowSize are ignored. When there are fewer samples
// than columns the window size is zero and every peak is 0.
func Reduce(samples []float32, width int) ([]float32, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}

	peaks := make([]float32, width)
	windowSize := len(samples) / width
	if windowSize == 0 {
		return peaks, nil
	}

	for i := range peaks {
		var peak float32
		for _, s := range samples[i*windowSize : (i+1)*windowSize] {
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}
		peaks[i] = peak
	}

	return peaks, nil
}

// FromSource builds the envelope of the first channel of src.
func FromSource(src *audio.Source, width int) (Envelope, error) {
	if err := src.Validate(); err != nil {
		return Envelope{}, err
	}

	peaks, err := Reduce(src.Channels[0], width)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		Peaks:      peaks,
		Duration:   src.Duration(),
		SampleRate: src.SampleRate,
	}, nil
}
