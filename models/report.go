package models

// Percentiles is a nearest-rank percentile summary of a sample. All fields
// are zero when the sample was empty.
type Percentiles struct {
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P95  float64 `json:"p95"`
	PMax float64 `json:"p_max"`
}

// AggregationBucket is one aggregation group keyed by a time period or a
// model identity. Buckets are built in a single pass over the metric points
// and are immutable after finalization.
type AggregationBucket struct {
	Label           string      `json:"label"`
	SortKey         int64       `json:"sort_key,omitempty"` // numeric ordering key; 0 when label-ordered
	Count           int         `json:"count"`
	TotalTokens     int         `json:"total_tokens"`
	AverageTPS      float64     `json:"average_tps"`
	AverageITPS     float64     `json:"average_itps"`
	AverageOTPS     float64     `json:"average_otps"`
	TPSPercentiles  Percentiles `json:"tps_percentiles"`
	ITPSPercentiles Percentiles `json:"itps_percentiles"`
	OTPSPercentiles Percentiles `json:"otps_percentiles"`

	// Model aggregation extras; zero for period buckets.
	TotalInputTokens     int     `json:"total_input_tokens,omitempty"`
	TotalOutputTokens    int     `json:"total_output_tokens,omitempty"`
	TotalDurationSeconds float64 `json:"total_duration_seconds,omitempty"`
}

// Summary carries the batch-level counters and grand aggregates of a
// pipeline run.
type Summary struct {
	FilesScanned      int         `json:"files_scanned"`
	FilesProcessed    int         `json:"files_processed"`
	FilesSkipped      int         `json:"files_skipped"`
	FilesFromCache    int         `json:"files_from_cache"`
	TotalSessions     int         `json:"total_sessions"`
	TotalTurns        int         `json:"total_turns"`
	TotalTokens       int         `json:"total_tokens"`
	TotalInputTokens  int         `json:"total_input_tokens"`
	TotalOutputTokens int         `json:"total_output_tokens"`
	AverageTPS        float64     `json:"average_tps"`
	AverageITPS       float64     `json:"average_itps"`
	AverageOTPS       float64     `json:"average_otps"`
	TPSPercentiles    Percentiles `json:"tps_percentiles"`
	ITPSPercentiles   Percentiles `json:"itps_percentiles"`
	OTPSPercentiles   Percentiles `json:"otps_percentiles"`
	Models            []string    `json:"models"` // descending by total tokens
	ElapsedSeconds    float64     `json:"elapsed_seconds"`
}

// Report is the full result of processing a file batch. This struct is the
// boundary consumed by rendering layers; nothing in the pipeline depends on
// how it is presented.
type Report struct {
	Sessions        []SessionSummary    `json:"sessions"`
	AllMetricPoints []MetricPoint       `json:"all_metric_points"`
	ModelStats      []AggregationBucket `json:"model_stats"`
	Summary         Summary             `json:"summary"`
}

// SessionData is the cached unit for one file: its metric points plus the
// session summary built from them. Cache entries store exactly this.
type SessionData struct {
	MetricPoints []MetricPoint  `json:"metric_points"`
	Session      SessionSummary `json:"session"`
}

// ParseError describes one log line that failed to decode.
type ParseError struct {
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"` // truncated excerpt
	Error      string `json:"error"`
}

