package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/audiocut/internal/audio"
	"github.com/maauso/audiocut/internal/job"
	"github.com/maauso/audiocut/internal/region"
	"github.com/maauso/audiocut/internal/storage"
	"github.com/maauso/audiocut/internal/waveform"
)

// DefaultWaveformWidth is used when a request does not name a width.
const DefaultWaveformWidth = 800

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service            *job.ExportService
	decoder            audio.Decoder
	store              storage.Storage
	validator          *validator.Validate
	logger             *slog.Logger
	waveformWidth      int
	enableAsyncProcess bool
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithAsyncProcessing enables or disables background processing.
// When disabled, CreateExport only creates the job and returns immediately.
func WithAsyncProcessing(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.enableAsyncProcess = enabled
	}
}

// WithWaveformWidth sets the default number of waveform peaks.
func WithWaveformWidth(width int) HandlerOption {
	return func(h *Handlers) {
		if width > 0 {
			h.waveformWidth = width
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.ExportService, decoder audio.Decoder, store storage.Storage, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:            service,
		decoder:            decoder,
		store:              store,
		validator:          validator.New(),
		logger:             logger,
		waveformWidth:      DefaultWaveformWidth,
		enableAsyncProcess: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Regions handles POST /regions requests.
func (h *Handlers) Regions(w http.ResponseWriter, r *http.Request) {
	var req RegionsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	regions, err := region.Partition(req.Markers, req.Duration)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp := RegionsResponse{Regions: make([]RegionDTO, len(regions)), Count: len(regions)}
	for i, rg := range regions {
		resp.Regions[i] = RegionDTO{
			Index:    rg.Index,
			Start:    rg.Start,
			End:      rg.End,
			Duration: rg.Duration(),
			Label:    region.FormatClock(rg.Start) + " - " + region.FormatClock(rg.End),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Waveform handles POST /waveform requests.
func (h *Handlers) Waveform(w http.ResponseWriter, r *http.Request) {
	var req WaveformRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	width := req.Width
	if width == 0 {
		width = h.waveformWidth
	}

	src, err := h.decodeUpload(r.Context(), req.FileName, req.AudioBase64)
	if err != nil {
		h.logger.Warn("failed to decode upload",
			slog.String("file_name", req.FileName),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "DECODE_FAILED")
		return
	}

	env, err := waveform.FromSource(src, width)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WaveformResponse{
		Peaks:      env.Peaks,
		Width:      env.Resolution(),
		Duration:   env.Duration,
		SampleRate: env.SampleRate,
		Channels:   src.NumChannels(),
	})
}

// CreateExport handles POST /exports requests.
func (h *Handlers) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req CreateExportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	input := job.ExportInput{
		AudioBase64: req.AudioBase64,
		FileName:    req.FileName,
		Markers:     region.Markers(req.Markers),
		Captions:    req.Captions,
	}

	createdJob, err := h.service.CreateJob(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to create export job",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create export job", "JOB_CREATION_FAILED")
		return
	}

	// The request context ends with the response; processing must outlive it.
	if h.enableAsyncProcess {
		go func(ctx context.Context, jobID string, inp job.ExportInput) {
			if _, err := h.service.ProcessExistingJob(ctx, jobID, inp); err != nil {
				h.logger.Error("background export failed",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
			}
		}(context.WithoutCancel(r.Context()), createdJob.ID, input)
	}

	writeJSON(w, http.StatusAccepted, CreateExportResponse{
		ID:     createdJob.ID,
		Status: string(createdJob.Status),
	})
}

// ListExports handles GET /exports requests.
func (h *Handlers) ListExports(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list export jobs", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list export jobs", "JOB_FETCH_FAILED")
		return
	}

	resp := ExportListResponse{Exports: make([]ExportResponse, len(jobs))}
	for i, j := range jobs {
		resp.Exports[i] = toExportResponse(j)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetExport handles GET /exports/{id} requests.
func (h *Handlers) GetExport(w http.ResponseWriter, r *http.Request) {
	found, ok := h.findJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toExportResponse(found))
}

// CancelExport handles DELETE /exports/{id} requests.
func (h *Handlers) CancelExport(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	cancelled, err := h.service.CancelJob(r.Context(), jobID)
	switch {
	case errors.Is(err, job.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "export job not found", "JOB_NOT_FOUND")
		return
	case errors.Is(err, job.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "export job already finished", "JOB_FINISHED")
		return
	case err != nil:
		h.logger.Error("failed to cancel export job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to cancel export job", "JOB_CANCEL_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, toExportResponse(cancelled))
}

// DownloadSegment handles GET /exports/{id}/segments/{index} requests.
// Remote deliveries are redirected to; local files are streamed back.
func (h *Handlers) DownloadSegment(w http.ResponseWriter, r *http.Request) {
	found, ok := h.findJob(w, r)
	if !ok {
		return
	}

	if found.Status != job.StatusCompleted {
		writeError(w, http.StatusConflict, "export job is not completed", "JOB_NOT_COMPLETED")
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 || index >= len(found.Segments) {
		writeError(w, http.StatusNotFound, "segment not found", "SEGMENT_NOT_FOUND")
		return
	}
	seg := found.Segments[index]

	if storage.IsRemote(seg.Location) {
		http.Redirect(w, r, seg.Location, http.StatusFound)
		return
	}

	rc, err := h.store.LoadTemp(r.Context(), seg.Location)
	if err != nil {
		h.logger.Error("failed to open delivered segment",
			slog.String("job_id", found.ID),
			slog.String("location", seg.Location),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusGone, "segment file is no longer available", "SEGMENT_GONE")
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(seg.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", seg.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("segment download interrupted",
			slog.String("job_id", found.ID),
			slog.String("error", err.Error()),
		)
	}
}

// findJob loads the job named by the {id} path value, writing an error
// response when it cannot.
func (h *Handlers) findJob(w http.ResponseWriter, r *http.Request) (*job.Job, bool) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "export ID is required", "MISSING_JOB_ID")
		return nil, false
	}

	found, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "export job not found", "JOB_NOT_FOUND")
			return nil, false
		}
		h.logger.Error("failed to get export job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get export job", "JOB_FETCH_FAILED")
		return nil, false
	}
	return found, true
}

// decodeUpload stores the base64 payload in a temp file, decodes it and
// removes the file again.
func (h *Handlers) decodeUpload(ctx context.Context, fileName, payload string) (*audio.Source, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}

	path, err := h.store.SaveTemp(ctx, fileName, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	defer func() {
		if err := h.store.CleanupTemp(context.WithoutCancel(ctx), []string{path}); err != nil {
			h.logger.Warn("failed to clean up upload",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}()

	return h.decoder.Decode(ctx, path)
}

func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

// writeDomainError maps domain sentinel errors onto error codes.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, region.ErrOutOfRangeMarker):
		writeError(w, http.StatusBadRequest, err.Error(), "OUT_OF_RANGE_MARKER")
	case errors.Is(err, audio.ErrInvalidSource):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_SOURCE")
	case errors.Is(err, waveform.ErrInvalidWidth):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_WIDTH")
	default:
		h.logger.Error("unexpected error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

func toExportResponse(j *job.Job) ExportResponse {
	resp := ExportResponse{
		ID:               j.ID,
		Status:           string(j.Status),
		FileName:         j.FileName,
		Progress:         j.Progress,
		Error:            j.Error,
		CaptionsLocation: j.CaptionsLocation,
	}
	for _, s := range j.Segments {
		resp.Segments = append(resp.Segments, SegmentDTO{
			Index:    s.Index,
			Name:     s.Name,
			Start:    s.Start,
			End:      s.End,
			Duration: s.Duration,
			Size:     s.Size,
			Location: s.Location,
		})
	}
	return resp
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
