package calculations

import (
	"sort"
	"strconv"
	"time"

	"github.com/mkwok/turnstat/logging"
	"github.com/mkwok/turnstat/models"
)

// Period selects how metric points are bucketed by time.
type Period string

const (
	PeriodSession    Period = "session"
	PeriodHour       Period = "hour"
	PeriodDayOfWeek  Period = "dayOfWeek"
	PeriodDayOfMonth Period = "dayOfMonth"
	PeriodMonth      Period = "month"
	PeriodDay        Period = "day"
	PeriodDateHour   Period = "dateHour"
)

// Periods lists the supported selectors.
func Periods() []Period {
	return []Period{
		PeriodSession, PeriodHour, PeriodDayOfWeek, PeriodDayOfMonth,
		PeriodMonth, PeriodDay, PeriodDateHour,
	}
}

// weekOrder is the canonical week, used instead of lexical weekday names.
var weekOrder = map[string]int{
	"Sunday": 0, "Monday": 1, "Tuesday": 2, "Wednesday": 3,
	"Thursday": 4, "Friday": 5, "Saturday": 6,
}

// bucketAccumulator holds the running sums for one key while the single
// aggregation pass runs. It is discarded at finalize time.
type bucketAccumulator struct {
	label       string
	sortKey     int64
	hasSortKey  bool
	count       int
	totalTokens int
	sumTPS      float64
	sumITPS     float64
	sumOTPS     float64
	tpsValues   []float64
	itpsValues  []float64
	otpsValues  []float64
}

// PeriodAggregator buckets metric points by a time-period key.
type PeriodAggregator struct {
	timezone *time.Location
}

// NewPeriodAggregator creates an aggregator. Labels derive from timestamps
// in tz; nil defaults to UTC.
func NewPeriodAggregator(tz *time.Location) *PeriodAggregator {
	if tz == nil {
		tz = time.UTC
	}
	return &PeriodAggregator{timezone: tz}
}

// Aggregate buckets the points by the selector's key function, finalizes
// averages and percentiles per bucket, and sorts buckets by the selector's
// ordering policy. Unknown selectors fall back to session grouping.
func (pa *PeriodAggregator) Aggregate(points []models.MetricPoint, period Period) []models.AggregationBucket {
	switch period {
	case PeriodSession, PeriodHour, PeriodDayOfWeek, PeriodDayOfMonth,
		PeriodMonth, PeriodDay, PeriodDateHour:
	default:
		logging.LogDebugf("unknown period selector %q, falling back to session", period)
		period = PeriodSession
	}

	buckets := make(map[string]*bucketAccumulator)
	for _, point := range points {
		label, sortKey, hasSortKey := pa.keyFor(point, period)

		acc, ok := buckets[label]
		if !ok {
			acc = &bucketAccumulator{label: label, sortKey: sortKey, hasSortKey: hasSortKey}
			buckets[label] = acc
		}
		acc.count++
		acc.totalTokens += point.TotalTokens
		acc.sumTPS += point.TPS
		acc.sumITPS += point.ITPS
		acc.sumOTPS += point.OTPS
		acc.tpsValues = append(acc.tpsValues, point.TPS)
		acc.itpsValues = append(acc.itpsValues, point.ITPS)
		acc.otpsValues = append(acc.otpsValues, point.OTPS)
	}

	result := make([]models.AggregationBucket, 0, len(buckets))
	for _, acc := range buckets {
		result = append(result, finalizeBucket(acc))
	}

	sortBuckets(result, period)
	return result
}

// keyFor derives the bucket key for one point. A sortKey is produced only
// where the label alone cannot order the buckets.
func (pa *PeriodAggregator) keyFor(point models.MetricPoint, period Period) (string, int64, bool) {
	ts := point.Timestamp.In(pa.timezone)

	switch period {
	case PeriodHour:
		return strconv.Itoa(ts.Hour()), 0, false
	case PeriodDayOfWeek:
		return ts.Weekday().String(), 0, false
	case PeriodDayOfMonth:
		return strconv.Itoa(ts.Day()), 0, false
	case PeriodMonth:
		// year*12+month orders chronologically regardless of label text
		return ts.Format("2006-01"), int64(ts.Year())*12 + int64(ts.Month()) - 1, true
	case PeriodDay:
		return ts.Format("2006-01-02"), ts.UnixMilli(), true
	case PeriodDateHour:
		return ts.Format("2006-01-02 15:00"), ts.UnixMilli(), true
	default:
		return point.SessionID, 0, false
	}
}

func finalizeBucket(acc *bucketAccumulator) models.AggregationBucket {
	bucket := models.AggregationBucket{
		Label:           acc.label,
		Count:           acc.count,
		TotalTokens:     acc.totalTokens,
		TPSPercentiles:  CalculatePercentiles(acc.tpsValues),
		ITPSPercentiles: CalculatePercentiles(acc.itpsValues),
		OTPSPercentiles: CalculatePercentiles(acc.otpsValues),
	}
	if acc.hasSortKey {
		bucket.SortKey = acc.sortKey
	}
	if acc.count > 0 {
		bucket.AverageTPS = acc.sumTPS / float64(acc.count)
		bucket.AverageITPS = acc.sumITPS / float64(acc.count)
		bucket.AverageOTPS = acc.sumOTPS / float64(acc.count)
	}
	return bucket
}

// sortBuckets orders buckets by the most specific applicable policy:
// canonical week order, numeric label, numeric sort key, then lexical label.
func sortBuckets(buckets []models.AggregationBucket, period Period) {
	switch period {
	case PeriodDayOfWeek:
		sort.Slice(buckets, func(i, j int) bool {
			return weekOrder[buckets[i].Label] < weekOrder[buckets[j].Label]
		})
	case PeriodHour, PeriodDayOfMonth:
		sort.Slice(buckets, func(i, j int) bool {
			left, _ := strconv.Atoi(buckets[i].Label)
			right, _ := strconv.Atoi(buckets[j].Label)
			return left < right
		})
	case PeriodMonth, PeriodDay, PeriodDateHour:
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].SortKey < buckets[j].SortKey
		})
	default:
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].Label < buckets[j].Label
		})
	}
}
