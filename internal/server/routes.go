package server

import (
	"log/slog"
	"net/http"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
	// MaxBodyBytes caps request bodies; base64 uploads dominate. Zero disables the cap.
	MaxBodyBytes int64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   256 << 20,
	}
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /regions", h.Regions)
	mux.HandleFunc("POST /waveform", h.Waveform)
	mux.HandleFunc("POST /exports", h.CreateExport)
	mux.HandleFunc("GET /exports", h.ListExports)
	mux.HandleFunc("GET /exports/{id}", h.GetExport)
	mux.HandleFunc("DELETE /exports/{id}", h.CancelExport)
	mux.HandleFunc("GET /exports/{id}/segments/{index}", h.DownloadSegment)

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
		MaxBodyMiddleware(cfg.MaxBodyBytes),
	)

	return chain(mux)
}
