package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestWAV writes interleaved integer samples to a WAV file with go-audio/wav.
func writeTestWAV(t *testing.T, path string, sampleRate, bitDepth, numChans int, data []int) {
	t.Helper()
	writeTaggedWAV(t, path, sampleRate, bitDepth, numChans, 1, data)
}

// writeTaggedWAV is writeTestWAV with an explicit WAV format tag.
func writeTaggedWAV(t *testing.T, path string, sampleRate, bitDepth, numChans, formatTag int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, numChans, formatTag)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: numChans},
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
}

func TestWAVDecoder_Stereo16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	// Frames: (L, R) = (16384, -16384), (0, 32767), (-32768, 8192)
	writeTestWAV(t, path, 22050, 16, 2, []int{16384, -16384, 0, 32767, -32768, 8192})

	src, err := NewWAVDecoder().Decode(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 22050, src.SampleRate)
	require.Equal(t, 2, src.NumChannels())
	assert.Equal(t, 3, src.Len())

	assert.InDeltaSlice(t, []float32{0.5, 0, -1}, src.Channels[0], 1e-4)
	assert.InDeltaSlice(t, []float32{-0.5, 0.99997, 0.25}, src.Channels[1], 1e-4)
}

func TestWAVDecoder_Mono24(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono24.wav")
	writeTestWAV(t, path, 48000, 24, 1, []int{4194304, -8388608})

	src, err := NewWAVDecoder().Decode(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, src.NumChannels())
	assert.InDeltaSlice(t, []float32{0.5, -1}, src.Channels[0], 1e-6)
}

func TestWAVDecoder_NotAWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff data"), 0o600))

	_, err := NewWAVDecoder().Decode(context.Background(), path)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestWAVDecoder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWAVDecoder().Decode(ctx, "irrelevant.wav")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetAudioDivisor(t *testing.T) {
	_, err := getAudioDivisor(12)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	d, err := getAudioDivisor(16)
	require.NoError(t, err)
	assert.Equal(t, float32(32768), d)
}

type stubDecoder struct {
	called string
	name   string
	err    error
}

func (s *stubDecoder) Decode(_ context.Context, path string) (*Source, error) {
	s.called = path
	if s.err != nil {
		return nil, s.err
	}
	return &Source{SampleRate: 1, Channels: [][]float32{{0}}}, nil
}

func TestFormatDecoder_Dispatch(t *testing.T) {
	wavDec := &stubDecoder{name: "wav"}
	fallback := &stubDecoder{name: "ffmpeg"}
	dec := NewFormatDecoder(wavDec, fallback)

	_, err := dec.Decode(context.Background(), "a/b/Clip.WAV")
	require.NoError(t, err)
	assert.Equal(t, "a/b/Clip.WAV", wavDec.called)

	_, err = dec.Decode(context.Background(), "song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", fallback.called)
}

func TestFormatDecoder_NoFallback(t *testing.T) {
	wavDec := &stubDecoder{}
	dec := NewFormatDecoder(wavDec, nil)

	_, err := dec.Decode(context.Background(), "song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", wavDec.called)
}

func TestWAVDecoder_FloatTagUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	writeTaggedWAV(t, path, 8000, 32, 1, 3, []int{0, 0, 0, 0})

	_, err := NewWAVDecoder().Decode(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatDecoder_UnsupportedWAVUsesFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	writeTaggedWAV(t, path, 8000, 32, 1, 3, []int{0, 0, 0, 0})

	fallback := &stubDecoder{name: "ffmpeg"}
	dec := NewFormatDecoder(NewWAVDecoder(), fallback)

	src, err := dec.Decode(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, path, fallback.called)
}

func TestFormatDecoder_UnsupportedWAVWithoutFallback(t *testing.T) {
	wavDec := &stubDecoder{err: ErrUnsupportedFormat}
	dec := NewFormatDecoder(wavDec, nil)

	_, err := dec.Decode(context.Background(), "float.wav")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatDecoder_InvalidWAVIsNotRetried(t *testing.T) {
	wavDec := &stubDecoder{err: ErrInvalidSource}
	fallback := &stubDecoder{}
	dec := NewFormatDecoder(wavDec, fallback)

	_, err := dec.Decode(context.Background(), "broken.wav")
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Empty(t, fallback.called)
}
