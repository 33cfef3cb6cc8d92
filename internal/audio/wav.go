package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE format tag for integer PCM.
const wavFormatPCM = 1

// ErrUnsupportedFormat is returned when a file uses an encoding the decoder
// cannot convert to float samples.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// WAVDecoder decodes integer PCM WAV files using go-audio/wav.
type WAVDecoder struct{}

// NewWAVDecoder creates a new WAVDecoder.
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

// Decode implements Decoder.Decode.
func (d *WAVDecoder) Decode(ctx context.Context, path string) (*Source, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, fmt.Errorf("open WAV file: %w", err)
	}
	defer f.Close()

	return DecodeWAV(f)
}

// DecodeWAV decodes a WAV stream into a Source.
func DecodeWAV(r io.ReadSeeker) (*Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrInvalidSource)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read WAV data: %w", err)
	}

	samples, err := intsToFloats(buf, int(dec.BitDepth))
	if err != nil {
		return nil, err
	}

	return NewSource(int(dec.SampleRate), Deinterleave(samples, int(dec.NumChans)))
}

// getAudioDivisor returns the divisor that maps a signed sample of the given
// bit depth into [-1, 1).
func getAudioDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 8:
		return 128.0, nil
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
}

func intsToFloats(buf *goaudio.IntBuffer, bitDepth int) ([]float32, error) {
	divisor, err := getAudioDivisor(bitDepth)
	if err != nil {
		return nil, err
	}

	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		// 8-bit WAV samples are unsigned.
		if bitDepth == 8 {
			v -= 128
		}
		out[i] = float32(v) / divisor
	}
	return out, nil
}

// Verify interface implementation at compile time.
var _ Decoder = (*WAVDecoder)(nil)
