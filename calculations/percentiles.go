package calculations

import (
	"math"
	"sort"

	"github.com/mkwok/turnstat/models"
)

// CalculatePercentiles computes the nearest-rank percentile summary of a
// sample. The input need not be sorted and is not modified. For percentile
// p the index into the ascending-sorted sample is ceil(p/100*n)-1, clamped
// to [0, n-1]; there is no interpolation. An empty sample yields all zeros
// so downstream consumers never divide by an empty set.
func CalculatePercentiles(values []float64) models.Percentiles {
	if len(values) == 0 {
		return models.Percentiles{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return models.Percentiles{
		P50:  nearestRank(sorted, 50),
		P75:  nearestRank(sorted, 75),
		P95:  nearestRank(sorted, 95),
		PMax: sorted[len(sorted)-1],
	}
}

func nearestRank(sorted []float64, p float64) float64 {
	index := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if index < 0 {
		index = 0
	}
	if index > len(sorted)-1 {
		index = len(sorted) - 1
	}
	return sorted[index]
}
