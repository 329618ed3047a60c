// Package pipeline orchestrates the analytics run: admission filtering,
// per-file parse and turn segmentation (or cache reuse), global
// accumulation, and the final aggregation into a report.
package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkwok/turnstat/calculations"
	"github.com/mkwok/turnstat/fileio"
	"github.com/mkwok/turnstat/logging"
	"github.com/mkwok/turnstat/models"
)

// ErrNoCandidateFiles distinguishes "ran with zero admitted files" from a
// normal run over files that all happened to be empty.
var ErrNoCandidateFiles = errors.New("no files matched the log naming convention ([uuid].jsonl)")

// ProgressFunc is invoked after each file reaches accumulation, whether
// served from cache or freshly processed. Calls are strictly sequential and
// monotonically increasing: files are never processed concurrently.
type ProgressFunc func(processed, total int)

// ResultCache is the memoization surface the processor needs. A nil cache
// disables memoization entirely; every cache failure degrades to uncached
// behavior.
type ResultCache interface {
	Get(fileKey string) (models.SessionData, bool)
	Set(fileKey, filename string, data models.SessionData) error
}

// Processor runs batches of log files through the pipeline.
type Processor struct {
	cache ResultCache
}

// NewProcessor creates a processor. cache may be nil.
func NewProcessor(cache ResultCache) *Processor {
	return &Processor{cache: cache}
}

// batchTotals is threaded through the file loop and finalized once at the
// end; nothing outside the loop mutates it.
type batchTotals struct {
	sessions       []models.SessionSummary
	allPoints      []models.MetricPoint
	totalTokens    int
	inputTokens    int
	outputTokens   int
	filesProcessed int
	filesSkipped   int
	filesFromCache int
}

// Process runs the batch in input order and assembles the report. One bad
// file never aborts the batch: per-file faults are logged with the file
// identity and processing continues.
func (p *Processor) Process(files []string, progress ProgressFunc) (*models.Report, error) {
	startTime := time.Now()

	admitted, rejected := fileio.FilterCandidates(files)
	if rejected > 0 {
		logging.LogWarnf("excluded %d file(s) with non-conforming names", rejected)
	}
	if len(admitted) == 0 {
		return nil, ErrNoCandidateFiles
	}

	var totals batchTotals
	for _, path := range admitted {
		data, status := p.processFile(path, startTime)
		switch status {
		case fileSkipped:
			totals.filesSkipped++
			continue
		case fileFaulted:
			// Logged with file identity inside processFile; the file
			// contributes nothing and the batch continues.
			continue
		case fileFromCache:
			totals.filesFromCache++
		}

		totals.allPoints = append(totals.allPoints, data.MetricPoints...)
		totals.sessions = append(totals.sessions, data.Session)
		totals.totalTokens += data.Session.TotalTokens
		totals.inputTokens += data.Session.InputTokens
		totals.outputTokens += data.Session.OutputTokens
		totals.filesProcessed++

		if progress != nil {
			progress(totals.filesProcessed, len(admitted))
		}
	}

	report := buildReport(&totals, len(admitted), time.Since(startTime))

	logging.LogInfof("completed in %.2fs (%d processed, %d from cache, %d skipped, %d sessions, %d turns)",
		report.Summary.ElapsedSeconds, totals.filesProcessed, totals.filesFromCache,
		totals.filesSkipped, len(totals.sessions), len(totals.allPoints))

	return report, nil
}

// fileStatus describes how one file's processing ended. Skips (empty parse,
// zero turns) and faults (read failure) are counted differently.
type fileStatus int

const (
	fileProcessed fileStatus = iota
	fileFromCache
	fileSkipped
	fileFaulted
)

// processFile produces the session data for one file, from cache when the
// file identity matches a prior run.
func (p *Processor) processFile(path string, runStart time.Time) (models.SessionData, fileStatus) {
	filename := filepath.Base(path)

	var fileKey string
	if p.cache != nil {
		key, err := fileio.FileKeyFor(path)
		if err != nil {
			logging.LogWarnf("%s: failed to derive file key: %v", filename, err)
		} else {
			fileKey = key
			if cached, hit := p.cache.Get(fileKey); hit {
				logging.LogDebugf("%s: using cached data", filename)
				return cached, fileFromCache
			}
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logging.LogErrorf("%s: failed to read file: %v", filename, err)
		return models.SessionData{}, fileFaulted
	}

	events, _ := fileio.ParseJSONL(content, filename)
	if len(events) == 0 {
		logging.LogWarnf("%s: no valid user/assistant messages found", filename)
		return models.SessionData{}, fileSkipped
	}

	sessionID := strings.TrimSuffix(filename, filepath.Ext(filename))
	points := calculations.SegmentTurns(events, sessionID)
	if len(points) == 0 {
		logging.LogWarnf("%s: no complete conversation turns", filename)
		return models.SessionData{}, fileSkipped
	}

	data := models.SessionData{
		MetricPoints: points,
		Session:      buildSessionSummary(sessionID, filename, points, events, runStart),
	}

	if p.cache != nil && fileKey != "" {
		if err := p.cache.Set(fileKey, filename, data); err != nil {
			logging.LogWarnf("%s: failed to cache data: %v", filename, err)
		}
	}

	return data, fileProcessed
}

// buildSessionSummary folds a file's metric points into its immutable
// per-file summary.
func buildSessionSummary(sessionID, filename string, points []models.MetricPoint, events []models.MessageEvent, runStart time.Time) models.SessionSummary {
	var totalTokens, inputTokens, outputTokens int
	var sumTPS, sumITPS, sumOTPS float64
	sessionModels := models.NewModelSet()

	for _, point := range points {
		totalTokens += point.TotalTokens
		inputTokens += point.InputTokens
		outputTokens += point.OutputTokens
		sumTPS += point.TPS
		sumITPS += point.ITPS
		sumOTPS += point.OTPS
		sessionModels.Add(point.Model)
	}

	timestamp := runStart
	if len(events) > 0 {
		timestamp = events[0].Timestamp
	}

	count := float64(len(points))
	return models.SessionSummary{
		ID:           sessionID,
		Filename:     filename,
		TurnCount:    len(points),
		TotalTokens:  totalTokens,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		AverageTPS:   sumTPS / count,
		AverageITPS:  sumITPS / count,
		AverageOTPS:  sumOTPS / count,
		Timestamp:    timestamp,
		Models:       sessionModels.Values(),
	}
}

func buildReport(totals *batchTotals, filesScanned int, elapsed time.Duration) *models.Report {
	var sumTPS, sumITPS, sumOTPS float64
	tpsValues := make([]float64, 0, len(totals.allPoints))
	itpsValues := make([]float64, 0, len(totals.allPoints))
	otpsValues := make([]float64, 0, len(totals.allPoints))

	for _, point := range totals.allPoints {
		sumTPS += point.TPS
		sumITPS += point.ITPS
		sumOTPS += point.OTPS
		tpsValues = append(tpsValues, point.TPS)
		itpsValues = append(itpsValues, point.ITPS)
		otpsValues = append(otpsValues, point.OTPS)
	}

	summary := models.Summary{
		FilesScanned:      filesScanned,
		FilesProcessed:    totals.filesProcessed,
		FilesSkipped:      totals.filesSkipped,
		FilesFromCache:    totals.filesFromCache,
		TotalSessions:     len(totals.sessions),
		TotalTurns:        len(totals.allPoints),
		TotalTokens:       totals.totalTokens,
		TotalInputTokens:  totals.inputTokens,
		TotalOutputTokens: totals.outputTokens,
		TPSPercentiles:    calculations.CalculatePercentiles(tpsValues),
		ITPSPercentiles:   calculations.CalculatePercentiles(itpsValues),
		OTPSPercentiles:   calculations.CalculatePercentiles(otpsValues),
		ElapsedSeconds:    elapsed.Seconds(),
	}
	if len(totals.allPoints) > 0 {
		count := float64(len(totals.allPoints))
		summary.AverageTPS = sumTPS / count
		summary.AverageITPS = sumITPS / count
		summary.AverageOTPS = sumOTPS / count
	}

	modelStats := calculations.AggregateByModel(totals.allPoints)
	summary.Models = make([]string, 0, len(modelStats))
	for _, bucket := range modelStats {
		summary.Models = append(summary.Models, bucket.Label)
	}

	return &models.Report{
		Sessions:        totals.sessions,
		AllMetricPoints: totals.allPoints,
		ModelStats:      modelStats,
		Summary:         summary,
	}
}
