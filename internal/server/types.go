// Package server provides the HTTP server for the audiocut API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// RegionsRequest asks for the regions a marker set produces.
type RegionsRequest struct {
	// Duration is the source length in seconds.
	Duration float64 `json:"duration" validate:"gt=0"`
	// Markers are cut points in seconds, in any order.
	Markers []float64 `json:"markers" validate:"max=10000"`
}

// RegionDTO is one region in a RegionsResponse.
type RegionDTO struct {
	Index    int     `json:"index"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	// Label is the m:ss range shown to users, e.g. "0:30 - 1:10".
	Label string `json:"label"`
}

// RegionsResponse lists the regions and how many files an export would produce.
type RegionsResponse struct {
	Regions []RegionDTO `json:"regions"`
	Count   int         `json:"count"`
}

// WaveformRequest uploads a source to reduce into a peak envelope.
type WaveformRequest struct {
	// AudioBase64 is the base64-encoded source file.
	AudioBase64 string `json:"audio_base64" validate:"required,base64"`
	// FileName selects the decoder by extension.
	FileName string `json:"file_name" validate:"required,max=255"`
	// Width is the number of peaks; zero means the server default.
	Width int `json:"width" validate:"omitempty,min=1,max=10000"`
}

// WaveformResponse is the peak envelope of channel 0.
type WaveformResponse struct {
	Peaks      []float32 `json:"peaks"`
	Width      int       `json:"width"`
	Duration   float64   `json:"duration"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
}

// CreateExportRequest is the HTTP request body for starting an export job.
type CreateExportRequest struct {
	// AudioBase64 is the base64-encoded source file.
	AudioBase64 string `json:"audio_base64" validate:"required,base64"`
	// FileName is the original file name; its base names the outputs.
	FileName string `json:"file_name" validate:"required,max=255"`
	// Markers are cut points in seconds, in any order.
	Markers []float64 `json:"markers" validate:"max=10000"`
	// Captions requests an SRT cue sheet alongside the audio files.
	Captions bool `json:"captions"`
}

// CreateExportResponse is the HTTP response after creating an export job.
type CreateExportResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SegmentDTO describes one delivered file.
type SegmentDTO struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Size     int     `json:"size"`
	Location string  `json:"location"`
}

// ExportResponse is the HTTP response for getting export job details.
type ExportResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	FileName string `json:"file_name"`
	// Progress is the percentage of completion (0-100).
	Progress int `json:"progress"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// Segments are present once the job has completed.
	Segments []SegmentDTO `json:"segments,omitempty"`
	// CaptionsLocation is set when a cue sheet was requested and delivered.
	CaptionsLocation string `json:"captions_location,omitempty"`
}

// ExportListResponse lists export jobs, newest first.
type ExportListResponse struct {
	Exports []ExportResponse `json:"exports"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
