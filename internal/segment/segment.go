// Package segment slices decoded audio into one independent sample buffer per
// region of a marker partition.
package segment

import (
	"math"

	"github.com/maauso/audiocut/internal/audio"
	"github.com/maauso/audiocut/internal/region"
)

// Slice is the audio of a single region. Channels are freshly allocated and
// never share memory with the source or with other slices.
type Slice struct {
	Region   region.Region
	Channels [][]float32
}

// Frames returns the number of samples per channel.
func (s Slice) Frames() int {
	if len(s.Channels) == 0 {
		return 0
	}
	return len(s.Channels[0])
}

// Export partitions src by markers and copies the samples of every region.
// Markers are normalized here regardless of what the caller did, so the
// result always matches region.Partition for the same input.
func Export(src *audio.Source, markers region.Markers) ([]Slice, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	regions, err := region.Partition(markers, src.Duration())
	if err != nil {
		return nil, err
	}

	slices := make([]Slice, len(regions))
	for i, r := range regions {
		slices[i] = Cut(src, r)
	}
	return slices, nil
}

// Cut copies the samples of one region. Sample offsets are
// floor(seconds * sampleRate) clipped to [0, src.Len()]; a region that maps
// to no samples yields zero-length channels.
func Cut(src *audio.Source, r region.Region) Slice {
	n := src.Len()
	start := sampleIndex(r.Start, src.SampleRate, n)
	end := sampleIndex(r.End, src.SampleRate, n)

	length := end - start
	if length < 0 {
		length = 0
	}

	channels := make([][]float32, src.NumChannels())
	for c, data := range src.Channels {
		out := make([]float32, length)
		for i := range out {
			// Reads past the end of the channel stay silent.
			if j := start + i; j < len(data) {
				out[i] = data[j]
			}
		}
		channels[c] = out
	}

	return Slice{Region: r, Channels: channels}
}

func sampleIndex(seconds float64, sampleRate, n int) int {
	idx := int(math.Floor(seconds * float64(sampleRate)))
	if idx < 0 {
		return 0
	}
	if idx > n {
		return n
	}
	return idx
}
