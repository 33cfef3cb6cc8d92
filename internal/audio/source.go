// Package audio provides the decoded audio representation consumed by the
// export pipeline, together with decoders that produce it from files.
package audio

import (
	"errors"
	"fmt"
)

// ErrInvalidSource is returned when a Source carries no usable audio: no
// channels, a non-positive sample rate, channels of unequal length or a
// non-positive duration.
var ErrInvalidSource = errors.New("invalid audio source")

// Source is fully decoded audio: one float32 sample slice per channel, all of
// equal length, with nominal range [-1, 1].
//
// A Source is treated as read-only by every consumer; nothing in this module
// writes into Channels after construction.
type Source struct {
	// SampleRate is the number of frames per second in Hz.
	SampleRate int
	// Channels holds the per-channel sample data.
	Channels [][]float32
}

// NewSource validates and returns a Source.
func NewSource(sampleRate int, channels [][]float32) (*Source, error) {
	s := &Source{SampleRate: sampleRate, Channels: channels}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NumChannels returns the channel count.
func (s *Source) NumChannels() int {
	return len(s.Channels)
}

// Len returns the number of frames (samples per channel).
func (s *Source) Len() int {
	if len(s.Channels) == 0 {
		return 0
	}
	return len(s.Channels[0])
}

// Duration returns the length of the audio in seconds.
func (s *Source) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(s.Len()) / float64(s.SampleRate)
}

// Validate reports whether the source can be partitioned and exported.
func (s *Source) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidSource)
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("%w: no channel data", ErrInvalidSource)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidSource, s.SampleRate)
	}
	n := len(s.Channels[0])
	for i, ch := range s.Channels[1:] {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrInvalidSource, i+1, len(ch), n)
		}
	}
	if n == 0 {
		return fmt.Errorf("%w: zero duration", ErrInvalidSource)
	}
	return nil
}

// Deinterleave splits interleaved frames into per-channel slices.
// Trailing values that do not fill a complete frame are discarded.
func Deinterleave(interleaved []float32, numChannels int) [][]float32 {
	if numChannels <= 0 {
		return nil
	}
	frames := len(interleaved) / numChannels
	channels := make([][]float32, numChannels)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		base := f * numChannels
		for c := 0; c < numChannels; c++ {
			channels[c][f] = interleaved[base+c]
		}
	}
	return channels
}
