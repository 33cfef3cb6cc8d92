package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/audiocut/internal/bootstrap"
	"github.com/maauso/audiocut/internal/waveform"
)

func newWaveformCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "waveform <file>",
		Short: "Print the peak envelope of a file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			if width == 0 {
				width = e.cfg.WaveformWidth
			}

			src, err := bootstrap.NewDecoder(e.cfg).Decode(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			envelope, err := waveform.FromSource(src, width)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(envelope)
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 0, "number of peaks (default: WAVEFORM_WIDTH)")
	return cmd
}
