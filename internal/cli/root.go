// Package cli implements the audiocut command line: cutting a file at
// markers, previewing the regions a marker set yields and printing a waveform.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/maauso/audiocut/internal/config"
)

type ctxKey struct{}

type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the audiocut command tree. Configuration is read from the
// environment before any subcommand runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "audiocut",
		Short:         "Split audio files at markers into 16-bit PCM WAV segments.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// stdout carries command output; logs go to stderr.
			logger := cfg.NewLoggerTo(cmd.ErrOrStderr())
			cmd.SetContext(context.WithValue(cmd.Context(), ctxKey{}, &env{cfg: cfg, logger: logger}))
			return nil
		},
	}

	root.AddCommand(newSplitCmd(), newRegionsCmd(), newWaveformCmd())
	return root
}

func envFrom(cmd *cobra.Command) *env {
	return cmd.Context().Value(ctxKey{}).(*env)
}
