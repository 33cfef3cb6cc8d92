package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/audiocut/internal/region"
)

var errDurationRequired = errors.New("--duration must be positive")

func newRegionsCmd() *cobra.Command {
	var (
		duration float64
		markers  []float64
	)

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Preview the regions a marker set produces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(duration > 0) {
				return errDurationRequired
			}

			regions, err := region.Partition(markers, duration)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range regions {
				fmt.Fprintf(out, "%d\t%s - %s\t%.3fs\n",
					r.Index+1, region.FormatClock(r.Start), region.FormatClock(r.End), r.Duration())
			}
			noun := "files"
			if len(regions) == 1 {
				noun = "file"
			}
			fmt.Fprintf(out, "%d %s will be exported\n", len(regions), noun)
			return nil
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "source duration in seconds")
	cmd.Flags().Float64SliceVar(&markers, "at", nil, "marker position in seconds (repeatable or comma separated)")
	return cmd
}
