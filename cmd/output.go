package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"

	"github.com/mkwok/turnstat/calculations"
	"github.com/mkwok/turnstat/models"
)

func outputReport(report *models.Report, periodStats []models.AggregationBucket, period calculations.Period, format string) error {
	w := os.Stdout
	switch strings.ToLower(format) {
	case "json":
		return outputJSON(w, report, periodStats, period)
	case "csv":
		return outputCSV(w, report)
	case "summary":
		outputSummary(w, report)
		return nil
	default:
		return outputTable(w, report, periodStats, period)
	}
}

func outputJSON(w io.Writer, report *models.Report, periodStats []models.AggregationBucket, period calculations.Period) error {
	payload := struct {
		*models.Report
		Period      string                     `json:"period"`
		PeriodStats []models.AggregationBucket `json:"period_stats"`
	}{
		Report:      report,
		Period:      string(period),
		PeriodStats: periodStats,
	}

	data, err := sonic.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// outputCSV writes one row per metric point, the rawest useful export.
func outputCSV(w io.Writer, report *models.Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"session_id", "timestamp", "tps", "itps", "otps",
		"total_tokens", "input_tokens", "output_tokens", "duration_seconds", "model"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, point := range report.AllMetricPoints {
		row := []string{
			point.SessionID,
			point.Timestamp.Format(time.RFC3339),
			formatFloat(point.TPS),
			formatFloat(point.ITPS),
			formatFloat(point.OTPS),
			strconv.Itoa(point.TotalTokens),
			strconv.Itoa(point.InputTokens),
			strconv.Itoa(point.OutputTokens),
			formatFloat(point.DurationSeconds),
			point.Model,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func outputTable(w io.Writer, report *models.Report, periodStats []models.AggregationBucket, period calculations.Period) error {
	outputSummary(w, report)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "\nMODEL\tTURNS\tTOKENS\tAVG TPS\tP50\tP95\tMAX")
	for _, bucket := range report.ModelStats {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			bucket.Label, bucket.Count, humanize.Comma(int64(bucket.TotalTokens)),
			formatFloat(bucket.AverageTPS),
			formatFloat(bucket.TPSPercentiles.P50),
			formatFloat(bucket.TPSPercentiles.P95),
			formatFloat(bucket.TPSPercentiles.PMax))
	}

	fmt.Fprintf(tw, "\n%s\tTURNS\tTOKENS\tAVG TPS\tP50\tP95\tMAX\n", strings.ToUpper(string(period)))
	for _, bucket := range periodStats {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			bucket.Label, bucket.Count, humanize.Comma(int64(bucket.TotalTokens)),
			formatFloat(bucket.AverageTPS),
			formatFloat(bucket.TPSPercentiles.P50),
			formatFloat(bucket.TPSPercentiles.P95),
			formatFloat(bucket.TPSPercentiles.PMax))
	}

	return tw.Flush()
}

// outputSummary cannot fail; writer errors on stdout have nowhere useful
// to go anyway.
func outputSummary(w io.Writer, report *models.Report) {
	s := report.Summary

	fmt.Fprintf(w, "Files: %d scanned, %d processed, %d from cache, %d skipped\n",
		s.FilesScanned, s.FilesProcessed, s.FilesFromCache, s.FilesSkipped)
	fmt.Fprintf(w, "Sessions: %d, turns: %d\n", s.TotalSessions, s.TotalTurns)
	fmt.Fprintf(w, "Tokens: %s total (%s in, %s out)\n",
		humanize.Comma(int64(s.TotalTokens)),
		humanize.Comma(int64(s.TotalInputTokens)),
		humanize.Comma(int64(s.TotalOutputTokens)))
	fmt.Fprintf(w, "Throughput: %s tok/s avg (p50 %s, p95 %s, max %s)\n",
		formatFloat(s.AverageTPS),
		formatFloat(s.TPSPercentiles.P50),
		formatFloat(s.TPSPercentiles.P95),
		formatFloat(s.TPSPercentiles.PMax))
	if len(s.Models) > 0 {
		fmt.Fprintf(w, "Models: %s\n", strings.Join(s.Models, ", "))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
