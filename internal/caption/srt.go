// Package caption writes timed cues in SubRip (SRT) format.
package caption

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/maauso/audiocut/internal/export"
)

// Cue is a single numbered caption block.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are truncated.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	// The epsilon absorbs binary representation error, e.g. 70.07*1000 < 70070.
	total := int64(math.Floor(seconds*1000 + 1e-6))
	ms := total % 1000
	secs := total / 1000 % 60
	mins := total / 60000 % 60
	hours := total / 3600000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, mins, secs, ms)
}

// Write serializes cues as SRT blocks separated by blank lines.
func Write(w io.Writer, cues []Cue) error {
	for i, c := range cues {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n",
			c.Index, FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text); err != nil {
			return err
		}
	}
	return nil
}

// Marshal returns the SRT document for cues.
func Marshal(cues []Cue) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, cues) // bytes.Buffer writes do not fail
	return buf.Bytes()
}

// ForSegments builds one cue per exported segment, numbered from 1 and
// labelled with the segment file name.
func ForSegments(segs []export.Segment) []Cue {
	cues := make([]Cue, len(segs))
	for i, s := range segs {
		cues[i] = Cue{
			Index: i + 1,
			Start: s.Start,
			End:   s.End,
			Text:  s.Name,
		}
	}
	return cues
}
