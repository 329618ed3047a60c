package calculations

import (
	"sort"

	"github.com/mkwok/turnstat/models"
)

// AggregateByModel buckets metric points by model identity, missing models
// grouped under the unknown sentinel. Output is ordered by descending total
// tokens so the dominant-usage model comes first; ties keep whatever order
// the sort leaves them in.
func AggregateByModel(points []models.MetricPoint) []models.AggregationBucket {
	type modelAccumulator struct {
		bucketAccumulator
		inputTokens     int
		outputTokens    int
		durationSeconds float64
	}

	accs := make(map[string]*modelAccumulator)
	var order []string

	for _, point := range points {
		model := point.Model
		if model == "" {
			model = models.UnknownModel
		}

		acc, ok := accs[model]
		if !ok {
			acc = &modelAccumulator{bucketAccumulator: bucketAccumulator{label: model}}
			accs[model] = acc
			order = append(order, model)
		}
		acc.count++
		acc.totalTokens += point.TotalTokens
		acc.inputTokens += point.InputTokens
		acc.outputTokens += point.OutputTokens
		acc.durationSeconds += point.DurationSeconds
		acc.sumTPS += point.TPS
		acc.sumITPS += point.ITPS
		acc.sumOTPS += point.OTPS
		acc.tpsValues = append(acc.tpsValues, point.TPS)
		acc.itpsValues = append(acc.itpsValues, point.ITPS)
		acc.otpsValues = append(acc.otpsValues, point.OTPS)
	}

	result := make([]models.AggregationBucket, 0, len(accs))
	for _, model := range order {
		acc := accs[model]
		bucket := finalizeBucket(&acc.bucketAccumulator)
		bucket.TotalInputTokens = acc.inputTokens
		bucket.TotalOutputTokens = acc.outputTokens
		bucket.TotalDurationSeconds = acc.durationSeconds
		result = append(result, bucket)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalTokens > result[j].TotalTokens
	})

	return result
}
