package segmentation

import (
	"errors"
	"sort"
)

// ErrNoValues is returned by Percentile75 on an empty input. Callers must
// guard with CustomerSource.ExistsAny before computing thresholds.
var ErrNoValues = errors.New("percentile of empty value set")

// Percentile75 computes the 75th percentile by the nearest-rank method:
// sort ascending and return the element at index int(0.75 * len). No
// interpolation; downstream rule-based segment generation depends on this
// exact selection, so the rank rule must not change.
func Percentile75(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoValues
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(0.75 * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx], nil
}
