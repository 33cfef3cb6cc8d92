package job

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maauso/audiocut/internal/audio"
	"github.com/maauso/audiocut/internal/caption"
	"github.com/maauso/audiocut/internal/export"
	"github.com/maauso/audiocut/internal/region"
	"github.com/maauso/audiocut/internal/storage"
)

// Progress checkpoints reported while a job runs.
const (
	progressDecoded  = 20
	progressEncoded  = 60
	progressDelivery = 95
)

// ExportInput contains the input parameters for an export job.
type ExportInput struct {
	// AudioBase64 is the base64-encoded source file.
	AudioBase64 string
	// FileName is the original file name. Its extension selects the decoder
	// and its base names the output files.
	FileName string
	// Markers are the cut points in seconds, in any order.
	Markers region.Markers
	// Captions requests an SRT cue sheet alongside the audio files.
	Captions bool
}

// ExportOutput contains the result of an export job.
type ExportOutput struct {
	// JobID is the unique identifier for the job.
	JobID string
	// Status is the final job status.
	Status Status
	// Segments lists the delivered files in region order.
	Segments []SegmentResult
	// CaptionsLocation is where the cue sheet was delivered, if requested.
	CaptionsLocation string
	// Error contains any error message if the job failed.
	Error string
}

// ExportService runs export jobs: decode the uploaded source, cut and encode
// every region, then deliver the files. Delivery starts only once every
// region has been encoded, so a failed job delivers nothing.
type ExportService struct {
	repo         Repository
	decoder      audio.Decoder
	store        storage.Storage
	orchestrator *export.Orchestrator
	logger       *slog.Logger

	// mu serializes read-modify-write cycles on stored jobs so that a
	// cancellation is never overwritten by a progress update.
	mu sync.Mutex
}

// ServiceOption configures an ExportService.
type ServiceOption func(*ExportService)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *ExportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOrchestrator replaces the default sequential orchestrator.
func WithOrchestrator(o *export.Orchestrator) ServiceOption {
	return func(s *ExportService) {
		if o != nil {
			s.orchestrator = o
		}
	}
}

// NewExportService creates a new ExportService.
func NewExportService(repo Repository, decoder audio.Decoder, store storage.Storage, opts ...ServiceOption) *ExportService {
	s := &ExportService{
		repo:    repo,
		decoder: decoder,
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.orchestrator == nil {
		s.orchestrator = export.NewOrchestrator(export.WithLogger(s.logger))
	}
	return s
}

// CreateJob creates a new job in IN_QUEUE status and persists it.
func (s *ExportService) CreateJob(ctx context.Context, input ExportInput) (*Job, error) {
	job := New()
	job.FileName = input.FileName
	job.Markers = append([]float64(nil), input.Markers...)
	job.Captions = input.Captions

	s.logger.Info("creating export job",
		slog.String("job_id", job.ID),
		slog.String("file_name", input.FileName),
		slog.Int("markers", len(input.Markers)),
		slog.Bool("captions", input.Captions),
	)

	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return job, nil
}

// GetJob retrieves a job by ID.
func (s *ExportService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs, newest first.
func (s *ExportService) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// CancelJob marks a queued or running job as CANCELLED. A running job
// finishes its current step and then discards its result.
func (s *ExportService) CancelJob(ctx context.Context, id string) (*Job, error) {
	job, err := s.update(ctx, id, func(j *Job) error {
		return j.Cancel()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("export job cancelled", slog.String("job_id", id))
	return job, nil
}

// Process creates a job and runs it to completion synchronously.
func (s *ExportService) Process(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	job, err := s.CreateJob(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.ProcessExistingJob(ctx, job.ID, input)
}

// ProcessExistingJob runs a previously created job. The returned error is
// non-nil only when the job failed; a cancelled job returns its output with
// StatusCancelled and a nil error.
func (s *ExportService) ProcessExistingJob(ctx context.Context, jobID string, input ExportInput) (*ExportOutput, error) {
	if _, err := s.update(ctx, jobID, func(j *Job) error { return j.Start() }); err != nil {
		return nil, fmt.Errorf("start job %s: %w", jobID, err)
	}

	log := s.logger.With(slog.String("job_id", jobID))
	log.Info("export job started", slog.String("file_name", input.FileName))

	segments, err := s.render(ctx, jobID, input)
	if err != nil {
		return s.fail(ctx, jobID, err)
	}

	if s.cancelled(ctx, jobID) {
		log.Info("job cancelled before delivery, discarding result",
			slog.Int("segments", len(segments)),
		)
		return &ExportOutput{JobID: jobID, Status: StatusCancelled}, nil
	}

	results, captionsLoc, err := s.deliver(ctx, jobID, input, segments)
	if err != nil {
		if errors.Is(err, errCancelled) {
			log.Info("job cancelled during delivery")
			return &ExportOutput{JobID: jobID, Status: StatusCancelled}, nil
		}
		return s.fail(ctx, jobID, err)
	}

	_, err = s.update(ctx, jobID, func(j *Job) error {
		if err := j.Complete(); err != nil {
			return err
		}
		j.SetSegments(results, captionsLoc)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			log.Info("job cancelled after delivery, discarding files")
			s.discard(ctx, jobID, deliveredKeys(jobID, input, results))
			return &ExportOutput{JobID: jobID, Status: StatusCancelled}, nil
		}
		return nil, err
	}

	log.Info("export job completed", slog.Int("segments", len(results)))

	return &ExportOutput{
		JobID:            jobID,
		Status:           StatusCompleted,
		Segments:         results,
		CaptionsLocation: captionsLoc,
	}, nil
}

// render decodes the uploaded source and encodes every region in memory.
func (s *ExportService) render(ctx context.Context, jobID string, input ExportInput) ([]export.Segment, error) {
	raw, err := base64.StdEncoding.DecodeString(input.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}

	path, err := s.store.SaveTemp(ctx, input.FileName, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}
	defer func() {
		if err := s.store.CleanupTemp(context.WithoutCancel(ctx), []string{path}); err != nil {
			s.logger.Warn("failed to clean up source",
				slog.String("job_id", jobID),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}()

	src, err := s.decoder.Decode(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	s.progress(ctx, jobID, progressDecoded)

	segments, err := s.orchestrator.Run(src, input.Markers, export.BaseName(input.FileName))
	if err != nil {
		return nil, fmt.Errorf("export regions: %w", err)
	}
	s.progress(ctx, jobID, progressEncoded)

	return segments, nil
}

var errCancelled = errors.New("job cancelled")

// deliver hands every segment to storage in region order, followed by the
// optional cue sheet. It stops early if the job is cancelled. Files already
// delivered by a run that does not finish are discarded.
func (s *ExportService) deliver(ctx context.Context, jobID string, input ExportInput, segments []export.Segment) ([]SegmentResult, string, error) {
	var keys []string
	abort := func(err error) ([]SegmentResult, string, error) {
		s.discard(ctx, jobID, keys)
		return nil, "", err
	}

	results := make([]SegmentResult, 0, len(segments))
	for i, seg := range segments {
		if s.cancelled(ctx, jobID) {
			return abort(errCancelled)
		}

		key := jobID + "/" + seg.Name
		loc, err := s.store.Deliver(ctx, key, seg.Data)
		if err != nil {
			return abort(fmt.Errorf("deliver %s: %w", seg.Name, err))
		}
		keys = append(keys, key)
		results = append(results, SegmentResult{
			Index:    seg.Index,
			Name:     seg.Name,
			Start:    seg.Start,
			End:      seg.End,
			Duration: seg.Duration,
			Size:     len(seg.Data),
			Location: loc,
		})

		span := progressDelivery - progressEncoded
		s.progress(ctx, jobID, progressEncoded+span*(i+1)/len(segments))
	}

	if !input.Captions {
		return results, "", nil
	}

	key := jobID + "/" + captionsName(input.FileName)
	loc, err := s.store.Deliver(ctx, key, caption.Marshal(caption.ForSegments(segments)))
	if err != nil {
		return abort(fmt.Errorf("deliver %s: %w", captionsName(input.FileName), err))
	}
	return results, loc, nil
}

func captionsName(fileName string) string {
	return export.BaseName(fileName) + ".srt"
}

// deliveredKeys lists the storage keys written for a finished delivery.
func deliveredKeys(jobID string, input ExportInput, results []SegmentResult) []string {
	keys := make([]string, 0, len(results)+1)
	for _, r := range results {
		keys = append(keys, jobID+"/"+r.Name)
	}
	if input.Captions {
		keys = append(keys, jobID+"/"+captionsName(input.FileName))
	}
	return keys
}

// discard removes delivered files of a job that did not complete.
func (s *ExportService) discard(ctx context.Context, jobID string, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.store.Discard(context.WithoutCancel(ctx), keys); err != nil {
		s.logger.Warn("failed to discard delivered files",
			slog.String("job_id", jobID),
			slog.Int("files", len(keys)),
			slog.String("error", err.Error()),
		)
	}
}

// fail marks the job FAILED unless it was cancelled in the meantime.
func (s *ExportService) fail(ctx context.Context, jobID string, cause error) (*ExportOutput, error) {
	s.logger.Error("export job failed",
		slog.String("job_id", jobID),
		slog.String("error", cause.Error()),
	)

	_, err := s.update(ctx, jobID, func(j *Job) error { return j.Fail(cause.Error()) })
	if errors.Is(err, ErrInvalidTransition) {
		return &ExportOutput{JobID: jobID, Status: StatusCancelled}, nil
	}
	if err != nil {
		s.logger.Error("failed to persist job failure",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}

	return &ExportOutput{JobID: jobID, Status: StatusFailed, Error: cause.Error()}, cause
}

func (s *ExportService) progress(ctx context.Context, jobID string, pct int) {
	_, err := s.update(ctx, jobID, func(j *Job) error {
		if j.IsTerminal() {
			return nil
		}
		j.UpdateProgress(pct)
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to update progress",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ExportService) cancelled(ctx context.Context, jobID string) bool {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return false
	}
	return job.GetStatus() == StatusCancelled
}

// update loads a job, applies fn and saves the result. Nothing is saved if
// fn returns an error.
func (s *ExportService) update(ctx context.Context, jobID string, fn func(*Job) error) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := fn(job); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job %s: %w", jobID, err)
	}
	return job, nil
}
