package calculations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkwok/turnstat/models"
)

func TestCalculatePercentiles_Empty(t *testing.T) {
	assert.Equal(t, models.Percentiles{}, CalculatePercentiles(nil))
	assert.Equal(t, models.Percentiles{}, CalculatePercentiles([]float64{}))
}

func TestCalculatePercentiles_SingleValue(t *testing.T) {
	got := CalculatePercentiles([]float64{10})

	assert.Equal(t, models.Percentiles{P50: 10, P75: 10, P95: 10, PMax: 10}, got)
}

func TestCalculatePercentiles_NearestRankCeil(t *testing.T) {
	got := CalculatePercentiles([]float64{1, 2, 3, 4})

	// ceil(0.50*4)-1 = 1 -> 2; ceil(0.75*4)-1 = 2 -> 3; ceil(0.95*4)-1 = 3 -> 4
	assert.Equal(t, 2.0, got.P50)
	assert.Equal(t, 3.0, got.P75)
	assert.Equal(t, 4.0, got.P95)
	assert.Equal(t, 4.0, got.PMax)
}

func TestCalculatePercentiles_UnsortedInputNotMutated(t *testing.T) {
	values := []float64{4, 1, 3, 2}

	got := CalculatePercentiles(values)

	assert.Equal(t, 2.0, got.P50)
	assert.Equal(t, []float64{4, 1, 3, 2}, values)
}

func TestCalculatePercentiles_Monotonic(t *testing.T) {
	values := []float64{12.5, 3.1, 99.9, 45.2, 0.4, 7.7, 61.3, 18.8, 2.2, 30.6}

	got := CalculatePercentiles(values)

	assert.LessOrEqual(t, got.P50, got.P75)
	assert.LessOrEqual(t, got.P75, got.P95)
	assert.LessOrEqual(t, got.P95, got.PMax)
	assert.Equal(t, 99.9, got.PMax)
}
