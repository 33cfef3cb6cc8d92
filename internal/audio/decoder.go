package audio

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// Decoder turns an audio file into a decoded Source.
type Decoder interface {
	// Decode reads the file at path and returns its decoded samples.
	// The returned Source has already been validated.
	Decode(ctx context.Context, path string) (*Source, error)
}

// FormatDecoder picks a decoder by file extension. WAV files are decoded
// natively; anything else goes through the fallback (usually ffmpeg).
type FormatDecoder struct {
	wav      Decoder
	fallback Decoder
}

// NewFormatDecoder creates a FormatDecoder. If fallback is nil, only WAV input
// is accepted.
func NewFormatDecoder(wav, fallback Decoder) *FormatDecoder {
	if wav == nil {
		wav = NewWAVDecoder()
	}
	return &FormatDecoder{wav: wav, fallback: fallback}
}

// Decode implements Decoder.Decode.
// WAV files in an encoding the native decoder does not handle, such as IEEE
// float or WAVE_FORMAT_EXTENSIBLE, are retried with the fallback.
func (d *FormatDecoder) Decode(ctx context.Context, path string) (*Source, error) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") && d.fallback != nil {
		return d.fallback.Decode(ctx, path)
	}

	src, err := d.wav.Decode(ctx, path)
	if err != nil && d.fallback != nil && errors.Is(err, ErrUnsupportedFormat) {
		return d.fallback.Decode(ctx, path)
	}
	return src, err
}

// Verify interface implementation at compile time.
var _ Decoder = (*FormatDecoder)(nil)
