package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maauso/audiocut/internal/bootstrap"
	"github.com/maauso/audiocut/internal/caption"
	"github.com/maauso/audiocut/internal/export"
	"github.com/maauso/audiocut/internal/region"
	"github.com/maauso/audiocut/internal/storage"
)

func newSplitCmd() *cobra.Command {
	var (
		markers     []float64
		outDir      string
		captions    bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Cut a file at the given markers and write one WAV per region",
		Long: `Decodes <file>, cuts it at every --at marker (seconds) and writes the
regions as 16-bit PCM WAV files. A single region is written as <base>_trimmed.wav,
several as <base>_part1.wav, <base>_part2.wav, ...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			path := args[0]

			if outDir == "" {
				outDir = filepath.Dir(path)
			}
			if concurrency <= 0 {
				concurrency = e.cfg.MaxConcurrentSegments
			}

			src, err := bootstrap.NewDecoder(e.cfg).Decode(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}

			base := export.BaseName(filepath.Base(path))
			orchestrator := export.NewOrchestrator(
				export.WithMaxConcurrency(concurrency),
				export.WithLogger(e.logger),
			)
			segments, err := orchestrator.Run(src, region.Markers(markers), base)
			if err != nil {
				return err
			}

			// Every region is encoded before anything is written.
			store, err := storage.NewLocalStorage(e.cfg.TempDir, outDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, seg := range segments {
				loc, err := store.Deliver(cmd.Context(), seg.Name, seg.Data)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s - %s\t%d bytes\n",
					loc, region.FormatClock(seg.Start), region.FormatClock(seg.End), len(seg.Data))
			}

			if captions {
				loc, err := store.Deliver(cmd.Context(), base+".srt", caption.Marshal(caption.ForSegments(segments)))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, loc)
			}

			e.logger.Info("split complete",
				slog.String("file", path),
				slog.Int("segments", len(segments)),
				slog.Float64("duration", src.Duration()),
			)
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&markers, "at", nil, "marker position in seconds (repeatable or comma separated)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: next to the input file)")
	cmd.Flags().BoolVar(&captions, "captions", false, "also write an SRT cue sheet of the regions")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "regions encoded in parallel (default: MAX_CONCURRENT_SEGMENTS)")
	return cmd
}
