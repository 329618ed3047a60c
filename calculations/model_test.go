package calculations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwok/turnstat/models"
)

func modelPoint(model string, tokens, input, output int, duration float64) models.MetricPoint {
	return models.MetricPoint{
		SessionID:       "s1",
		Timestamp:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalTokens:     tokens,
		InputTokens:     input,
		OutputTokens:    output,
		DurationSeconds: duration,
		TPS:             float64(tokens) / duration,
		Model:           model,
	}
}

func TestAggregateByModel_DescendingTotalTokens(t *testing.T) {
	points := []models.MetricPoint{
		modelPoint("small-model", 100, 60, 40, 10),
		modelPoint("big-model", 500, 300, 200, 10),
		modelPoint("small-model", 50, 30, 20, 5),
	}

	buckets := AggregateByModel(points)

	require.Len(t, buckets, 2)
	assert.Equal(t, "big-model", buckets[0].Label)
	assert.Equal(t, 500, buckets[0].TotalTokens)
	assert.Equal(t, "small-model", buckets[1].Label)
	assert.Equal(t, 150, buckets[1].TotalTokens)
	assert.Equal(t, 2, buckets[1].Count)
}

func TestAggregateByModel_TotalsFields(t *testing.T) {
	points := []models.MetricPoint{
		modelPoint("m1", 100, 60, 40, 10),
		modelPoint("m1", 200, 120, 80, 20),
	}

	buckets := AggregateByModel(points)

	require.Len(t, buckets, 1)
	assert.Equal(t, 180, buckets[0].TotalInputTokens)
	assert.Equal(t, 120, buckets[0].TotalOutputTokens)
	assert.Equal(t, 30.0, buckets[0].TotalDurationSeconds)
}

func TestAggregateByModel_EmptyModelGroupedAsUnknown(t *testing.T) {
	points := []models.MetricPoint{
		modelPoint("", 100, 60, 40, 10),
		modelPoint(models.UnknownModel, 50, 30, 20, 5),
	}

	buckets := AggregateByModel(points)

	require.Len(t, buckets, 1)
	assert.Equal(t, models.UnknownModel, buckets[0].Label)
	assert.Equal(t, 150, buckets[0].TotalTokens)
}

func TestAggregateByModel_TieKeepsInsertionOrder(t *testing.T) {
	points := []models.MetricPoint{
		modelPoint("first", 100, 60, 40, 10),
		modelPoint("second", 100, 60, 40, 10),
	}

	buckets := AggregateByModel(points)

	require.Len(t, buckets, 2)
	assert.Equal(t, "first", buckets[0].Label)
	assert.Equal(t, "second", buckets[1].Label)
}

func TestAggregateByModel_Empty(t *testing.T) {
	assert.Empty(t, AggregateByModel(nil))
}
