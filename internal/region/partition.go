package region

import "fmt"

// Region is one contiguous span [Start, End) of the timeline.
type Region struct {
	// Index is the zero-based position of the region in the partition.
	Index int `json:"index"`
	// Start is the region start in seconds.
	Start float64 `json:"start"`
	// End is the region end in seconds.
	End float64 `json:"end"`
}

// Duration returns the length of the region in seconds.
func (r Region) Duration() float64 {
	return r.End - r.Start
}

// Partition normalizes the markers and splits [0, duration) into len(clean)+1
// adjacent regions. Region boundaries are the clean marker values themselves,
// so region[i].End == region[i+1].Start holds exactly.
//
// A non-positive duration yields no regions.
func Partition(markers Markers, duration float64) ([]Region, error) {
	if !(duration > 0) {
		return nil, nil
	}

	clean, err := Normalize(markers, duration)
	if err != nil {
		return nil, err
	}

	if len(clean) == 0 {
		return []Region{{Index: 0, Start: 0, End: duration}}, nil
	}

	regions := make([]Region, 0, len(clean)+1)
	add := func(start, end float64) {
		regions = append(regions, Region{Index: len(regions), Start: start, End: end})
	}

	if clean[0] > 0 {
		add(0, clean[0])
	}
	for i := 0; i < len(clean)-1; i++ {
		add(clean[i], clean[i+1])
	}
	if last := clean[len(clean)-1]; last < duration {
		add(last, duration)
	}

	return regions, nil
}

// Count returns how many regions Partition would produce.
func Count(markers Markers, duration float64) (int, error) {
	regions, err := Partition(markers, duration)
	if err != nil {
		return 0, err
	}
	return len(regions), nil
}

// FormatClock renders seconds as m:ss, rounding to whole seconds.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
