package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
)

// FFmpegOpts configures the output format requested from ffmpeg.
type FFmpegOpts struct {
	// SampleRate is the output sample rate in Hz.
	// Default: 44100.
	SampleRate int

	// Channels is the output channel count.
	// Default: 2.
	Channels int
}

// DefaultFFmpegOpts returns the default ffmpeg decode options.
func DefaultFFmpegOpts() FFmpegOpts {
	return FFmpegOpts{
		SampleRate: 44100,
		Channels:   2,
	}
}

// FFmpegDecoder implements Decoder using the ffmpeg CLI. It handles any input
// ffmpeg can read (mp3, flac, ogg, m4a, ...) by converting it to raw 32-bit
// float PCM on stdout.
type FFmpegDecoder struct {
	ffmpegPath string
	opts       FFmpegOpts
}

// NewFFmpegDecoder creates a new FFmpegDecoder.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
func NewFFmpegDecoder(ffmpegPath string, opts FFmpegOpts) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	def := DefaultFFmpegOpts()
	if opts.SampleRate <= 0 {
		opts.SampleRate = def.SampleRate
	}
	if opts.Channels <= 0 {
		opts.Channels = def.Channels
	}
	return &FFmpegDecoder{ffmpegPath: ffmpegPath, opts: opts}
}

// Decode implements Decoder.Decode.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) (*Source, error) {
	// Validate input file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file does not exist: %s", path)
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", fmt.Sprintf("%d", d.opts.SampleRate),
		"-ac", fmt.Sprintf("%d", d.opts.Channels),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	samples := parseFloat32LE(stdout.Bytes())
	return NewSource(d.opts.SampleRate, Deinterleave(samples, d.opts.Channels))
}

// parseFloat32LE converts little-endian float32 bytes to samples.
// A trailing partial sample is ignored.
func parseFloat32LE(raw []byte) []float32 {
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples
}

// Verify interface implementation at compile time.
var _ Decoder = (*FFmpegDecoder)(nil)
