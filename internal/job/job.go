// Package job provides the Job aggregate for asynchronous audio export jobs.
// It includes the Job entity with its state machine, the repository port
// and the ExportService use case.
package job

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/maauso/audiocut/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusInQueue indicates the job has been accepted but not started.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the source is being decoded, cut or delivered.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates every segment was delivered.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the export produced nothing.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was cancelled; its result is discarded.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

func canTransition(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

// SegmentResult describes one delivered audio file.
type SegmentResult struct {
	// Index is the zero-based region position.
	Index int
	// Name is the output file name, e.g. clip_part2.wav.
	Name string
	// Start and End bound the region in seconds.
	Start float64
	End   float64
	// Duration is End - Start.
	Duration float64
	// Size is the encoded file size in bytes.
	Size int
	// Location is where the file was delivered: a local path or a URL.
	Location string
}

// Job represents one export request: a source file cut at a set of markers.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Status is the current job state.
	Status Status
	// FileName is the uploaded file name; its base names the outputs.
	FileName string
	// Markers are the raw cut points in seconds as submitted.
	Markers []float64
	// Captions requests an SRT cue sheet alongside the audio files.
	Captions bool
	// Segments are filled in once the job completes.
	Segments []SegmentResult
	// CaptionsLocation is where the cue sheet was delivered, if requested.
	CaptionsLocation string
	// Progress is the percentage of completion (0-100).
	Progress int
	// Error contains any error message if the job failed.
	Error string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial IN_QUEUE status.
func New() *Job {
	return NewWithID(id.Generate())
}

// NewWithID creates a new Job with the specified ID and initial IN_QUEUE status.
func NewWithID(jobID string) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Status:    StatusInQueue,
		Segments:  make([]SegmentResult, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED and sets progress to 100.
func (j *Job) Complete() error {
	if err := j.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	j.UpdateProgress(100)
	return nil
}

// Fail transitions the job to FAILED state with an error message.
// The message is only recorded if the transition is allowed.
func (j *Job) Fail(errMsg string) error {
	if err := j.TransitionTo(StatusFailed); err != nil {
		return err
	}
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return nil
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetSegments records the delivered segments and the optional cue sheet location.
func (j *Job) SetSegments(segments []SegmentResult, captionsLocation string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Segments = segments
	j.CaptionsLocation = captionsLocation
	j.UpdatedAt = time.Now()
}

// UpdateProgress sets the progress percentage (0-100).
func (j *Job) UpdateProgress(progress int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress = min(max(progress, 0), 100)
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(validTransitions[j.Status]) == 0
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:               j.ID,
		Status:           j.Status,
		FileName:         j.FileName,
		Markers:          slices.Clone(j.Markers),
		Captions:         j.Captions,
		Segments:         slices.Clone(j.Segments),
		CaptionsLocation: j.CaptionsLocation,
		Progress:         j.Progress,
		Error:            j.Error,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		StartedAt:        j.StartedAt,
		CompletedAt:      j.CompletedAt,
	}
}
