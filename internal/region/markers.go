// Package region turns user-chosen cut markers into a gap-free partition of
// an audio timeline. The same partition is used for display and for export,
// so marker semantics never diverge between the two.
package region

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrOutOfRangeMarker is returned when a marker cannot be normalized into the
// open interval (0, duration), which only happens for non-finite input.
var ErrOutOfRangeMarker = errors.New("marker out of range")

// Markers is a list of cut points in seconds. A raw Markers value may contain
// duplicates, boundary values or out-of-range values; Normalize derives the
// clean form used everywhere else.
type Markers []float64

// Normalize clamps every marker to [0, duration], removes exact duplicates,
// drops values equal to 0 or duration and sorts the rest ascending.
//
// Markers that are close together but not equal are kept as-is, so a
// near-zero-length region is still produced for them.
func Normalize(markers Markers, duration float64) (Markers, error) {
	clean := make(Markers, 0, len(markers))
	for i, m := range markers {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, fmt.Errorf("%w: marker %d is %v", ErrOutOfRangeMarker, i, m)
		}
		m = math.Max(0, math.Min(duration, m))
		if slices.Contains(clean, m) {
			continue
		}
		clean = append(clean, m)
	}

	slices.Sort(clean)

	return slices.DeleteFunc(clean, func(m float64) bool {
		return m <= 0 || m >= duration
	}), nil
}

// Add returns a new sorted copy of the markers with t appended.
// The receiver is not modified.
func (m Markers) Add(t float64) Markers {
	out := make(Markers, 0, len(m)+1)
	out = append(out, m...)
	out = append(out, t)
	slices.Sort(out)
	return out
}

// Remove returns a copy of the markers without the element at index i.
// An out-of-range index returns an unchanged copy.
func (m Markers) Remove(i int) Markers {
	out := slices.Clone(m)
	if i < 0 || i >= len(out) {
		return out
	}
	return slices.Delete(out, i, i+1)
}

// Nearest returns the index of the first marker within tolerance seconds of t,
// or -1 when no marker is close enough.
func (m Markers) Nearest(t, tolerance float64) int {
	for i, v := range m {
		if math.Abs(v-t) <= tolerance {
			return i
		}
	}
	return -1
}
