package fileio

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mkwok/turnstat/logging"
	"github.com/mkwok/turnstat/models"
)

const (
	// Session files can carry large inline content on a single line.
	scannerInitialBuffer = 64 * 1024
	scannerMaxBuffer     = 10 * 1024 * 1024

	// Parse error excerpts are truncated to keep diagnostics readable.
	excerptLimit = 100
)

// rawRecord mirrors the conversation log line shape. Token usage and the
// model identifier live under the nested message object.
type rawRecord struct {
	Type      string      `json:"type"`
	Timestamp interface{} `json:"timestamp"` // RFC3339 string or epoch number
	SessionID string      `json:"sessionId"`
	UUID      string      `json:"uuid"`
	Message   struct {
		Model string `json:"model"`
		Usage *struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// ParseJSONL decodes line-delimited conversation log content into an ordered
// event sequence. Each non-empty line is decoded independently; a failed
// line is recorded and skipped, never aborting the remaining lines. Only
// user and assistant records are retained; other types are dropped without
// being counted as errors.
func ParseJSONL(content []byte, filename string) ([]models.MessageEvent, []models.ParseError) {
	var events []models.MessageEvent
	var parseErrors []models.ParseError

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw rawRecord
		if err := sonic.Unmarshal(line, &raw); err != nil {
			parseErrors = append(parseErrors, newParseError(lineNumber, line, err))
			continue
		}

		if raw.Type != string(models.EventUser) && raw.Type != string(models.EventAssistant) {
			continue
		}

		ts, err := parseTimestamp(raw.Timestamp)
		if err != nil {
			parseErrors = append(parseErrors, newParseError(lineNumber, line, err))
			continue
		}

		event := models.MessageEvent{
			Type:      models.EventType(raw.Type),
			Timestamp: ts,
			SessionID: raw.SessionID,
			UUID:      raw.UUID,
			Model:     raw.Message.Model,
		}
		if raw.Message.Usage != nil {
			event.Usage = &models.Usage{
				InputTokens:  raw.Message.Usage.InputTokens,
				OutputTokens: raw.Message.Usage.OutputTokens,
			}
		}
		events = append(events, event)
	}

	// A scanner error stops the scan, so a single line over the
	// scannerMaxBuffer cap (bufio.ErrTooLong) abandons everything after
	// it. One recorded error covers the whole remainder.
	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, newParseError(lineNumber+1, nil, err))
	}

	if len(parseErrors) > 0 {
		logging.LogWarnf("%s: failed to parse %d line(s)", filename, len(parseErrors))
	}

	return events, parseErrors
}

// parseTimestamp accepts RFC3339 strings and numeric epoch values. Numbers
// are interpreted as epoch milliseconds, matching the log format.
func parseTimestamp(v interface{}) (time.Time, error) {
	switch ts := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
		return parsed, nil
	case float64:
		return time.UnixMilli(int64(ts)).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("missing timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func newParseError(lineNumber int, line []byte, err error) models.ParseError {
	excerpt := string(line)
	if len(excerpt) > excerptLimit {
		excerpt = excerpt[:excerptLimit]
	}
	return models.ParseError{
		LineNumber: lineNumber,
		Line:       strings.TrimSpace(excerpt),
		Error:      err.Error(),
	}
}
