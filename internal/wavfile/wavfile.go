// Package wavfile serializes float sample buffers into canonical 16-bit PCM
// RIFF/WAVE containers and reads their headers back.
package wavfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// HeaderSize is the size in bytes of the canonical WAV header.
const HeaderSize = 44

const (
	formatPCM      = 1
	bitDepth       = 16
	bytesPerSample = bitDepth / 8
	fmtChunkSize   = 16
	maxInt16       = 32767
)

// ErrMalformedInput is returned for channel data that cannot be encoded, or
// bytes that do not start with a canonical header.
var ErrMalformedInput = errors.New("malformed input")

// Header describes a canonical PCM WAV header.
type Header struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	// RIFFSize is the value at offset 4: total file size minus 8.
	RIFFSize uint32
	// DataSize is the PCM payload size in bytes.
	DataSize uint32
}

// Frames returns the number of sample frames described by the header.
func (h Header) Frames() int {
	if h.BlockAlign == 0 {
		return 0
	}
	return int(h.DataSize) / int(h.BlockAlign)
}

// Encode writes channels as a 16-bit PCM WAV container. Samples are clamped to
// [-1, 1] and scaled by 32767 with rounding; frames are interleaved in channel
// order. Zero-length channels produce a valid header with an empty payload.
func Encode(channels [][]float32, sampleRate int) ([]byte, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrMalformedInput)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrMalformedInput, sampleRate)
	}
	frames := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrMalformedInput, i+1, len(ch), frames)
		}
	}

	numChannels := len(channels)
	if err := checkLimits(frames, numChannels, sampleRate); err != nil {
		return nil, err
	}
	blockAlign := numChannels * bytesPerSample
	dataSize := frames * blockAlign

	buf := make([]byte, HeaderSize+dataSize)
	putHeader(buf, Header{
		AudioFormat:   formatPCM,
		NumChannels:   uint16(numChannels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bitDepth,
		RIFFSize:      uint32(len(buf) - 8),
		DataSize:      uint32(dataSize),
	})

	offset := HeaderSize
	for f := 0; f < frames; f++ {
		for _, ch := range channels {
			binary.LittleEndian.PutUint16(buf[offset:], uint16(quantize(ch[f])))
			offset += bytesPerSample
		}
	}

	return buf, nil
}

// checkLimits rejects inputs whose sizes do not fit the 32-bit and 16-bit
// header fields.
func checkLimits(frames, numChannels, sampleRate int) error {
	if numChannels > math.MaxUint16/bytesPerSample {
		return fmt.Errorf("%w: %d channels exceed the WAV header limit", ErrMalformedInput, numChannels)
	}
	blockAlign := uint64(numChannels) * bytesPerSample
	if uint64(sampleRate)*blockAlign > math.MaxUint32 {
		return fmt.Errorf("%w: byte rate of %d Hz x %d channels overflows", ErrMalformedInput, sampleRate, numChannels)
	}
	if uint64(frames)*blockAlign > math.MaxUint32-(HeaderSize-8) {
		return fmt.Errorf("%w: %d frames x %d channels exceed 4 GiB", ErrMalformedInput, frames, numChannels)
	}
	return nil
}

// quantize maps a float sample to a signed 16-bit value.
func quantize(s float32) int16 {
	v := float64(s)
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * maxInt16))
}

func putHeader(buf []byte, h Header) {
	le := binary.LittleEndian
	copy(buf[0:4], "RIFF")
	le.PutUint32(buf[4:8], h.RIFFSize)
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	le.PutUint32(buf[16:20], fmtChunkSize)
	le.PutUint16(buf[20:22], h.AudioFormat)
	le.PutUint16(buf[22:24], h.NumChannels)
	le.PutUint32(buf[24:28], h.SampleRate)
	le.PutUint32(buf[28:32], h.ByteRate)
	le.PutUint16(buf[32:34], h.BlockAlign)
	le.PutUint16(buf[34:36], h.BitsPerSample)
	copy(buf[36:40], "data")
	le.PutUint32(buf[40:44], h.DataSize)
}

// ReadHeader parses the canonical 44-byte header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than a WAV header", ErrMalformedInput, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" ||
		string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		return Header{}, fmt.Errorf("%w: missing RIFF/WAVE chunk markers", ErrMalformedInput)
	}

	le := binary.LittleEndian
	return Header{
		RIFFSize:      le.Uint32(data[4:8]),
		AudioFormat:   le.Uint16(data[20:22]),
		NumChannels:   le.Uint16(data[22:24]),
		SampleRate:    le.Uint32(data[24:28]),
		ByteRate:      le.Uint32(data[28:32]),
		BlockAlign:    le.Uint16(data[32:34]),
		BitsPerSample: le.Uint16(data[34:36]),
		DataSize:      le.Uint32(data[40:44]),
	}, nil
}
