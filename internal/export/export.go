// Package export turns decoded audio plus cut markers into named, encoded
// WAV segments. It performs no I/O: delivering the produced bytes is up to
// the caller.
package export

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/maauso/audiocut/internal/audio"
	"github.com/maauso/audiocut/internal/region"
	"github.com/maauso/audiocut/internal/segment"
	"github.com/maauso/audiocut/internal/wavfile"
)

// Extension is the file extension of every exported segment.
const Extension = "wav"

// Segment is one encoded region ready for delivery.
type Segment struct {
	// Index is the zero-based region position.
	Index int
	// Name is the output file name.
	Name string
	// Data is the complete WAV container.
	Data []byte
	// Start is the region start in seconds.
	Start float64
	// End is the region end in seconds.
	End float64
	// Duration is End - Start.
	Duration float64
}

// Orchestrator sequences partitioning, slicing and encoding.
type Orchestrator struct {
	logger *slog.Logger
	// maxConcurrency limits how many regions are encoded in parallel.
	maxConcurrency int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxConcurrency sets how many regions may be encoded at once.
// Values below 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithLogger sets the logger used for per-run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an Orchestrator that encodes regions sequentially
// unless WithMaxConcurrency says otherwise.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:         slog.Default(),
		maxConcurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run exports one Segment per region of src partitioned by markers, in
// region order. Either every region is encoded and returned, or an error is
// returned and no segments are.
func (o *Orchestrator) Run(src *audio.Source, markers region.Markers, baseName string) ([]Segment, error) {
	slices, err := segment.Export(src, markers)
	if err != nil {
		return nil, fmt.Errorf("slice audio: %w", err)
	}

	o.logger.Debug("exporting segments",
		slog.String("base_name", baseName),
		slog.Int("regions", len(slices)),
		slog.Int("sample_rate", src.SampleRate),
		slog.Int("channels", src.NumChannels()),
	)

	out := make([]Segment, len(slices))
	errs := make([]error, len(slices))

	sem := make(chan struct{}, o.maxConcurrency)
	var wg sync.WaitGroup
	for i := range slices {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			data, err := wavfile.Encode(slices[i].Channels, src.SampleRate)
			if err != nil {
				errs[i] = fmt.Errorf("encode region %d: %w", i, err)
				return
			}

			r := slices[i].Region
			out[i] = Segment{
				Index:    r.Index,
				Name:     SegmentName(baseName, i, len(slices)),
				Data:     data,
				Start:    r.Start,
				End:      r.End,
				Duration: r.Duration(),
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// SegmentName returns the output name for region i of total:
// "<base>_trimmed.wav" for a single region, "<base>_part<i+1>.wav" otherwise.
func SegmentName(baseName string, i, total int) string {
	if total == 1 {
		return fmt.Sprintf("%s_trimmed.%s", baseName, Extension)
	}
	return fmt.Sprintf("%s_part%d.%s", baseName, i+1, Extension)
}

var extRe = regexp.MustCompile(`\.[^/.]+$`)

// BaseName strips the final extension from a file name.
func BaseName(fileName string) string {
	return extRe.ReplaceAllString(fileName, "")
}
