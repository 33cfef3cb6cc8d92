package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/audiocut/internal/audio"
	"github.com/maauso/audiocut/internal/job"
)

// mockDecoder implements audio.Decoder for testing.
type mockDecoder struct {
	mock.Mock
}

func (m *mockDecoder) Decode(ctx context.Context, path string) (*audio.Source, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audio.Source), args.Error(1)
}

// mockStorage implements storage.Storage for testing.
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) SaveTemp(ctx context.Context, name string, data io.Reader) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) LoadTemp(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockStorage) CleanupTemp(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

func (m *mockStorage) Deliver(ctx context.Context, key string, data []byte) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Discard(ctx context.Context, keys []string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestHandlers(t *testing.T) (*Handlers, *mockDecoder, *mockStorage, job.Repository) {
	t.Helper()
	repo := job.NewMemoryRepository()
	decoder := &mockDecoder{}
	store := &mockStorage{}
	logger := testLogger()

	svc := job.NewExportService(repo, decoder, store, job.WithLogger(logger))

	// Background processing is exercised in the job package.
	handlers := NewHandlers(svc, decoder, store, logger, WithAsyncProcessing(false), WithWaveformWidth(4))
	return handlers, decoder, store, repo
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	bodyJSON, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(bodyJSON))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func completedJob(t *testing.T, repo job.Repository, segments []job.SegmentResult) *job.Job {
	t.Helper()
	j := job.NewWithID("export-done")
	j.FileName = "clip.wav"
	require.NoError(t, j.Start())
	j.SetSegments(segments, "")
	require.NoError(t, j.Complete())
	require.NoError(t, repo.Save(context.Background(), j))
	return j
}

func TestHealth(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRegions_ThreeRegions(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	rec := doJSON(t, h.Regions, http.MethodPost, "/regions", RegionsRequest{
		Duration: 100,
		Markers:  []float64{70, 30, 30, 150},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RegionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Regions, 3)
	assert.Equal(t, RegionDTO{Index: 0, Start: 0, End: 30, Duration: 30, Label: "0:00 - 0:30"}, resp.Regions[0])
	assert.Equal(t, RegionDTO{Index: 1, Start: 30, End: 70, Duration: 40, Label: "0:30 - 1:10"}, resp.Regions[1])
	assert.Equal(t, RegionDTO{Index: 2, Start: 70, End: 100, Duration: 30, Label: "1:10 - 1:40"}, resp.Regions[2])
}

func TestRegions_NoMarkers(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	rec := doJSON(t, h.Regions, http.MethodPost, "/regions", RegionsRequest{Duration: 12.5})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RegionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 12.5, resp.Regions[0].End)
}

func TestRegions_ValidationError(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	rec := doJSON(t, h.Regions, http.MethodPost, "/regions", RegionsRequest{Duration: 0, Markers: []float64{1}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestRegions_InvalidJSON(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/regions", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Regions(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, rec).Code)
}

func TestWaveform_DefaultWidth(t *testing.T) {
	h, decoder, store, _ := newTestHandlers(t)

	store.On("SaveTemp", mock.Anything, "clip.wav", mock.Anything).Return("/tmp/clip_1.wav", nil)
	store.On("CleanupTemp", mock.Anything, []string{"/tmp/clip_1.wav"}).Return(nil).Once()
	decoder.On("Decode", mock.Anything, "/tmp/clip_1.wav").Return(&audio.Source{
		SampleRate: 4,
		Channels: [][]float32{
			{0.1, -0.5, 0.2, 0.3, 0, 0, -1, 0.25},
			{1, 1, 1, 1, 1, 1, 1, 1},
		},
	}, nil)

	rec := doJSON(t, h.Waveform, http.MethodPost, "/waveform", WaveformRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("RIFF")),
		FileName:    "clip.wav",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp WaveformResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []float32{0.5, 0.3, 0, 1}, resp.Peaks)
	assert.Equal(t, 4, resp.Width)
	assert.Equal(t, 2.0, resp.Duration)
	assert.Equal(t, 4, resp.SampleRate)
	assert.Equal(t, 2, resp.Channels)

	store.AssertExpectations(t)
}

func TestWaveform_DecodeFailure(t *testing.T) {
	h, decoder, store, _ := newTestHandlers(t)

	store.On("SaveTemp", mock.Anything, mock.Anything, mock.Anything).Return("/tmp/x.ogg", nil)
	store.On("CleanupTemp", mock.Anything, []string{"/tmp/x.ogg"}).Return(nil).Once()
	decoder.On("Decode", mock.Anything, "/tmp/x.ogg").Return(nil, errors.New("ffmpeg: invalid data"))

	rec := doJSON(t, h.Waveform, http.MethodPost, "/waveform", WaveformRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("junk")),
		FileName:    "x.ogg",
		Width:       10,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "DECODE_FAILED", decodeError(t, rec).Code)
	store.AssertExpectations(t)
}

func TestWaveform_InvalidSource(t *testing.T) {
	h, decoder, store, _ := newTestHandlers(t)

	store.On("SaveTemp", mock.Anything, mock.Anything, mock.Anything).Return("/tmp/x.wav", nil)
	store.On("CleanupTemp", mock.Anything, mock.Anything).Return(nil)
	decoder.On("Decode", mock.Anything, mock.Anything).Return(&audio.Source{SampleRate: 44100}, nil)

	rec := doJSON(t, h.Waveform, http.MethodPost, "/waveform", WaveformRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("RIFF")),
		FileName:    "x.wav",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_SOURCE", decodeError(t, rec).Code)
}

func TestWaveform_ValidationError_Width(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	rec := doJSON(t, h.Waveform, http.MethodPost, "/waveform", WaveformRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("RIFF")),
		FileName:    "x.wav",
		Width:       20000,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestCreateExport_Success(t *testing.T) {
	h, _, _, repo := newTestHandlers(t)

	rec := doJSON(t, h.CreateExport, http.MethodPost, "/exports", CreateExportRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("RIFF")),
		FileName:    "clip.mp3",
		Markers:     []float64{30, 70},
		Captions:    true,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp CreateExportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, string(job.StatusInQueue), resp.Status)

	saved, err := repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp3", saved.FileName)
	assert.Equal(t, []float64{30, 70}, saved.Markers)
	assert.True(t, saved.Captions)
}

func TestCreateExport_OutOfRangeMarkersMatchRegions(t *testing.T) {
	h, decoder, store, _ := newTestHandlers(t)
	markers := []float64{-5, 30, 150}

	rec := doJSON(t, h.Regions, http.MethodPost, "/regions", RegionsRequest{Duration: 100, Markers: markers})
	require.Equal(t, http.StatusOK, rec.Code)
	var regions RegionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&regions))
	require.Equal(t, 2, regions.Count)

	rec = doJSON(t, h.CreateExport, http.MethodPost, "/exports", CreateExportRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("RIFF")),
		FileName:    "clip.wav",
		Markers:     markers,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var created CreateExportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	// 100 seconds of mono audio at 100 Hz.
	src, err := audio.NewSource(100, [][]float32{make([]float32, 10000)})
	require.NoError(t, err)
	store.On("SaveTemp", mock.Anything, "clip.wav", mock.Anything).Return("/tmp/clip_1.wav", nil)
	store.On("CleanupTemp", mock.Anything, []string{"/tmp/clip_1.wav"}).Return(nil)
	decoder.On("Decode", mock.Anything, "/tmp/clip_1.wav").Return(src, nil)
	store.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return("/out/segment.wav", nil)

	out, err := h.service.ProcessExistingJob(context.Background(), created.ID, job.ExportInput{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("RIFF")),
		FileName:    "clip.wav",
		Markers:     markers,
	})
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, out.Status)

	require.Len(t, out.Segments, len(regions.Regions))
	for i, r := range regions.Regions {
		assert.Equal(t, r.Start, out.Segments[i].Start, "region %d start", i)
		assert.Equal(t, r.End, out.Segments[i].End, "region %d end", i)
	}
}

func TestCreateExport_ValidationError(t *testing.T) {
	tests := []struct {
		name string
		body CreateExportRequest
	}{
		{"missing audio", CreateExportRequest{FileName: "a.wav"}},
		{"missing file name", CreateExportRequest{AudioBase64: base64.StdEncoding.EncodeToString([]byte("x"))}},
		{"not base64", CreateExportRequest{AudioBase64: "***", FileName: "a.wav"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _, _ := newTestHandlers(t)

			rec := doJSON(t, h.CreateExport, http.MethodPost, "/exports", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
		})
	}
}

func TestGetExport_Completed(t *testing.T) {
	h, _, _, repo := newTestHandlers(t)
	completedJob(t, repo, []job.SegmentResult{
		{Index: 0, Name: "clip_part1.wav", Start: 0, End: 5, Duration: 5, Size: 1044, Location: "/out/export-done/clip_part1.wav"},
		{Index: 1, Name: "clip_part2.wav", Start: 5, End: 9, Duration: 4, Size: 844, Location: "/out/export-done/clip_part2.wav"},
	})

	req := httptest.NewRequest(http.MethodGet, "/exports/export-done", nil)
	req.SetPathValue("id", "export-done")
	rec := httptest.NewRecorder()
	h.GetExport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "export-done", resp.ID)
	assert.Equal(t, string(job.StatusCompleted), resp.Status)
	assert.Equal(t, 100, resp.Progress)
	require.Len(t, resp.Segments, 2)
	assert.Equal(t, "clip_part2.wav", resp.Segments[1].Name)
	assert.Equal(t, 844, resp.Segments[1].Size)
}

func TestGetExport_NotFound(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/exports/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.GetExport(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "JOB_NOT_FOUND", decodeError(t, rec).Code)
}

func TestGetExport_MissingID(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/exports/", nil)
	rec := httptest.NewRecorder()
	h.GetExport(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_JOB_ID", decodeError(t, rec).Code)
}

func TestCancelExport(t *testing.T) {
	h, _, _, repo := newTestHandlers(t)
	queued := job.NewWithID("export-queued")
	require.NoError(t, repo.Save(context.Background(), queued))

	req := httptest.NewRequest(http.MethodDelete, "/exports/export-queued", nil)
	req.SetPathValue("id", "export-queued")
	rec := httptest.NewRecorder()
	h.CancelExport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ExportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(job.StatusCancelled), resp.Status)

	// A second cancel hits a terminal job.
	rec = httptest.NewRecorder()
	h.CancelExport(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "JOB_FINISHED", decodeError(t, rec).Code)
}

func TestCancelExport_NotFound(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodDelete, "/exports/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.CancelExport(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadSegment_Local(t *testing.T) {
	h, _, store, repo := newTestHandlers(t)
	completedJob(t, repo, []job.SegmentResult{
		{Index: 0, Name: "clip_trimmed.wav", Size: 8, Location: "/out/export-done/clip_trimmed.wav"},
	})
	store.On("LoadTemp", mock.Anything, "/out/export-done/clip_trimmed.wav").
		Return(io.NopCloser(strings.NewReader("RIFFdata")), nil)

	req := httptest.NewRequest(http.MethodGet, "/exports/export-done/segments/0", nil)
	req.SetPathValue("id", "export-done")
	req.SetPathValue("index", "0")
	rec := httptest.NewRecorder()
	h.DownloadSegment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="clip_trimmed.wav"`)
	assert.Equal(t, "RIFFdata", rec.Body.String())
}

func TestDownloadSegment_RemoteRedirects(t *testing.T) {
	h, _, store, repo := newTestHandlers(t)
	url := "https://audio.s3.us-east-1.amazonaws.com/export-done/clip_trimmed.wav"
	completedJob(t, repo, []job.SegmentResult{{Index: 0, Name: "clip_trimmed.wav", Location: url}})

	req := httptest.NewRequest(http.MethodGet, "/exports/export-done/segments/0", nil)
	req.SetPathValue("id", "export-done")
	req.SetPathValue("index", "0")
	rec := httptest.NewRecorder()
	h.DownloadSegment(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, url, rec.Header().Get("Location"))
	store.AssertNotCalled(t, "LoadTemp", mock.Anything, mock.Anything)
}

func TestDownloadSegment_Errors(t *testing.T) {
	h, _, store, repo := newTestHandlers(t)
	completedJob(t, repo, []job.SegmentResult{{Index: 0, Name: "a_trimmed.wav", Location: "/gone.wav"}})
	running := job.NewWithID("export-running")
	require.NoError(t, running.Start())
	require.NoError(t, repo.Save(context.Background(), running))
	store.On("LoadTemp", mock.Anything, "/gone.wav").Return(nil, os.ErrNotExist)

	tests := []struct {
		name     string
		id       string
		index    string
		wantCode int
		wantErr  string
	}{
		{"not completed", "export-running", "0", http.StatusConflict, "JOB_NOT_COMPLETED"},
		{"index out of range", "export-done", "1", http.StatusNotFound, "SEGMENT_NOT_FOUND"},
		{"index not a number", "export-done", "first", http.StatusNotFound, "SEGMENT_NOT_FOUND"},
		{"file removed", "export-done", "0", http.StatusGone, "SEGMENT_GONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/exports/x/segments/y", nil)
			req.SetPathValue("id", tt.id)
			req.SetPathValue("index", tt.index)
			rec := httptest.NewRecorder()
			h.DownloadSegment(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec).Code)
		})
	}
}

func TestRouter_Integration(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)
	router := NewRouter(h, testLogger(), DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	body, _ := json.Marshal(CreateExportRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("RIFF")),
		FileName:    "clip.wav",
	})
	req = httptest.NewRequest(http.MethodPost, "/exports", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var created CreateExportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	req = httptest.NewRequest(http.MethodGet, "/exports/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/exports", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ExportListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list.Exports, 1)

	req = httptest.NewRequest(http.MethodGet, "/exports/"+created.ID+"/segments/0", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)
	router := NewRouter(h, testLogger(), Config{MaxBodyBytes: 16})

	body := `{"duration": 100, "markers": [1, 2, 3, 4, 5, 6, 7, 8, 9]}`
	req := httptest.NewRequest(http.MethodPost, "/regions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, rec).Code)
}

func TestCORSMiddleware(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	cfg := Config{AllowedOrigins: []string{"https://example.com"}}
	router := NewRouter(h, testLogger(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/exports", nil)
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	handler := RecoveryMiddleware(testLogger())(panicHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Code)
}
