package calculations

import (
	"time"

	"github.com/mkwok/turnstat/models"
)

// turn accumulates assistant messages between two user messages. A turn is
// open once a user event arrives; it closes on the next user event or at
// end of stream.
type turn struct {
	openedAt          time.Time
	assistantMessages []models.MessageEvent
	open              bool
}

// SegmentTurns walks the event sequence in order and emits one MetricPoint
// per closed conversation turn.
//
// Rules, in arrival order:
//   - user while no turn is open: open a turn at this timestamp.
//   - user while a turn is open: close the current turn if it accumulated
//     assistant messages, otherwise discard it; then re-open.
//   - assistant while a turn is open: accumulate.
//   - assistant with no open turn: ignored, it cannot be attributed.
//   - end of stream: close the open turn if it accumulated anything.
//
// Turns whose computed duration is not positive emit nothing; duplicate or
// out-of-order timestamps are absorbed this way rather than producing
// negative rates.
func SegmentTurns(events []models.MessageEvent, sessionID string) []models.MetricPoint {
	var points []models.MetricPoint
	var current turn

	for _, event := range events {
		switch event.Type {
		case models.EventUser:
			if current.open && len(current.assistantMessages) > 0 {
				if point, ok := closeTurn(current, sessionID); ok {
					points = append(points, point)
				}
			}
			current = turn{openedAt: event.Timestamp, open: true}
		case models.EventAssistant:
			if current.open {
				current.assistantMessages = append(current.assistantMessages, event)
			}
		}
	}

	if current.open && len(current.assistantMessages) > 0 {
		if point, ok := closeTurn(current, sessionID); ok {
			points = append(points, point)
		}
	}

	return points
}

// closeTurn computes the rate metrics for a finished turn. The duration
// runs from the opening user message to the latest assistant timestamp;
// assistant messages without usage contribute zero tokens.
func closeTurn(t turn, sessionID string) (models.MetricPoint, bool) {
	var inputTokens, outputTokens int
	lastAssistant := t.openedAt
	modelSet := models.NewModelSet()

	for _, msg := range t.assistantMessages {
		if msg.HasUsage() {
			inputTokens += msg.Usage.InputTokens
			outputTokens += msg.Usage.OutputTokens
		}
		if msg.Timestamp.After(lastAssistant) {
			lastAssistant = msg.Timestamp
		}
		modelSet.Add(msg.Model)
	}

	durationSeconds := float64(lastAssistant.Sub(t.openedAt).Milliseconds()) / 1000
	if durationSeconds <= 0 {
		return models.MetricPoint{}, false
	}

	totalTokens := inputTokens + outputTokens

	return models.MetricPoint{
		SessionID:       sessionID,
		Timestamp:       t.openedAt,
		TPS:             float64(totalTokens) / durationSeconds,
		ITPS:            float64(inputTokens) / durationSeconds,
		OTPS:            float64(outputTokens) / durationSeconds,
		TotalTokens:     totalTokens,
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		DurationSeconds: durationSeconds,
		Model:           modelSet.First(),
		Models:          modelSet.Values(),
	}, true
}
