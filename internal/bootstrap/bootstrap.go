// Package bootstrap provides dependency initialization for the audiocut server and CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maauso/audiocut/internal/audio"
	"github.com/maauso/audiocut/internal/config"
	"github.com/maauso/audiocut/internal/export"
	"github.com/maauso/audiocut/internal/job"
	"github.com/maauso/audiocut/internal/storage"
)

// bucketCheckTimeout bounds the startup bucket check against MinIO.
const bucketCheckTimeout = 10 * time.Second

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	ExportService *job.ExportService
	Decoder       audio.Decoder
	Storage       storage.Storage
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	decoder := NewDecoder(cfg)
	orchestrator := NewOrchestrator(cfg, logger)

	svc := job.NewExportService(
		job.NewMemoryRepository(),
		decoder,
		store,
		job.WithLogger(logger),
		job.WithOrchestrator(orchestrator),
	)

	return &Dependencies{
		ExportService: svc,
		Decoder:       decoder,
		Storage:       store,
	}, nil
}

// NewDecoder returns a decoder that reads PCM WAV natively and hands every
// other container to ffmpeg.
func NewDecoder(cfg *config.Config) audio.Decoder {
	return audio.NewFormatDecoder(
		audio.NewWAVDecoder(),
		audio.NewFFmpegDecoder(cfg.FFmpegPath, audio.FFmpegOpts{
			SampleRate: cfg.DecodeSampleRate,
			Channels:   cfg.DecodeChannels,
		}),
	)
}

// NewOrchestrator returns an export orchestrator bounded by MAX_CONCURRENT_SEGMENTS.
func NewOrchestrator(cfg *config.Config, logger *slog.Logger) *export.Orchestrator {
	return export.NewOrchestrator(
		export.WithMaxConcurrency(cfg.MaxConcurrentSegments),
		export.WithLogger(logger),
	)
}

// initStorage creates the delivery backend: MinIO if configured, then S3,
// then local disk.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.MinioEnabled() {
		minioStore, err := storage.NewMinioStorage(cfg.TempDir, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			Bucket:    cfg.MinioBucket,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("create MinIO storage: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), bucketCheckTimeout)
		defer cancel()
		if err := minioStore.EnsureBucket(ctx); err != nil {
			// Deliveries fail until the bucket is reachable; the server can still
			// serve regions and waveforms.
			logger.Warn("MinIO bucket check failed",
				slog.String("bucket", cfg.MinioBucket),
				slog.String("error", err.Error()),
			)
		}

		logger.Info("MinIO storage configured",
			slog.String("endpoint", cfg.MinioEndpoint),
			slog.String("bucket", cfg.MinioBucket),
		)
		return minioStore, nil
	}

	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Storage(cfg.TempDir, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir, cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", localStore.TempDir()),
		slog.String("output_dir", localStore.OutputDir()),
	)
	return localStore, nil
}
