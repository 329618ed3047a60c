package calculations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwok/turnstat/models"
)

var turnBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func userEvent(offset time.Duration) models.MessageEvent {
	return models.MessageEvent{Type: models.EventUser, Timestamp: turnBase.Add(offset)}
}

func assistantEvent(offset time.Duration, model string, input, output int) models.MessageEvent {
	return models.MessageEvent{
		Type:      models.EventAssistant,
		Timestamp: turnBase.Add(offset),
		Model:     model,
		Usage:     &models.Usage{InputTokens: input, OutputTokens: output},
	}
}

func TestSegmentTurns_SingleTurn(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		assistantEvent(10*time.Second, "m1", 100, 50),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	point := points[0]
	assert.Equal(t, "s1", point.SessionID)
	assert.Equal(t, turnBase, point.Timestamp)
	assert.Equal(t, 10.0, point.DurationSeconds)
	assert.Equal(t, 15.0, point.TPS)
	assert.Equal(t, 10.0, point.ITPS)
	assert.Equal(t, 5.0, point.OTPS)
	assert.Equal(t, 150, point.TotalTokens)
	assert.Equal(t, 100, point.InputTokens)
	assert.Equal(t, 50, point.OutputTokens)
	assert.Equal(t, "m1", point.Model)
	assert.Equal(t, []string{"m1"}, point.Models)
}

func TestSegmentTurns_TurnClosedByNextUser(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		assistantEvent(5*time.Second, "m1", 10, 10),
		userEvent(60 * time.Second),
		assistantEvent(70*time.Second, "m2", 20, 20),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 2)
	assert.Equal(t, 5.0, points[0].DurationSeconds)
	assert.Equal(t, 10.0, points[1].DurationSeconds)
	assert.Equal(t, "m2", points[1].Model)
}

func TestSegmentTurns_EmptyTurnDiscardedOnReopen(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		userEvent(30 * time.Second), // previous turn had no assistant messages
		assistantEvent(40*time.Second, "m1", 50, 50),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	assert.Equal(t, turnBase.Add(30*time.Second), points[0].Timestamp)
}

func TestSegmentTurns_AssistantBeforeAnyUserIgnored(t *testing.T) {
	events := []models.MessageEvent{
		assistantEvent(0, "m1", 100, 100),
		userEvent(10 * time.Second),
		assistantEvent(20*time.Second, "m1", 10, 10),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	assert.Equal(t, 20, points[0].TotalTokens)
}

func TestSegmentTurns_ZeroDurationDropped(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		assistantEvent(0, "m1", 100, 50), // same timestamp as the user message
	}

	points := SegmentTurns(events, "s1")

	assert.Empty(t, points)
}

func TestSegmentTurns_OutOfOrderAssistantAbsorbed(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(10 * time.Second),
		assistantEvent(5*time.Second, "m1", 100, 50), // earlier than the user message
	}

	points := SegmentTurns(events, "s1")

	assert.Empty(t, points, "negative duration must never produce a point")
}

func TestSegmentTurns_MissingUsageContributesZero(t *testing.T) {
	noUsage := models.MessageEvent{
		Type:      models.EventAssistant,
		Timestamp: turnBase.Add(2 * time.Second),
		Model:     "m1",
	}
	events := []models.MessageEvent{
		userEvent(0),
		noUsage,
		assistantEvent(4*time.Second, "m1", 40, 40),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	assert.Equal(t, 80, points[0].TotalTokens)
	assert.Equal(t, 4.0, points[0].DurationSeconds)
}

func TestSegmentTurns_ModelAttributionFirstSeen(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		assistantEvent(1*time.Second, "m2", 10, 0),
		assistantEvent(2*time.Second, "m1", 10, 0),
		assistantEvent(3*time.Second, "m2", 10, 0),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	assert.Equal(t, "m2", points[0].Model)
	assert.Equal(t, []string{"m2", "m1"}, points[0].Models)
}

func TestSegmentTurns_NoModelReportsUnknown(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		assistantEvent(5*time.Second, "", 10, 10),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	assert.Equal(t, models.UnknownModel, points[0].Model)
	assert.Empty(t, points[0].Models)
}

func TestSegmentTurns_EndOfStreamClosesOpenTurn(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		assistantEvent(8*time.Second, "m1", 80, 0),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	assert.Equal(t, 10.0, points[0].ITPS)
}

func TestSegmentTurns_InvariantTotalIsInputPlusOutput(t *testing.T) {
	events := []models.MessageEvent{
		userEvent(0),
		assistantEvent(3*time.Second, "m1", 7, 13),
		assistantEvent(5*time.Second, "m1", 11, 17),
	}

	points := SegmentTurns(events, "s1")

	require.Len(t, points, 1)
	point := points[0]
	assert.Equal(t, point.InputTokens+point.OutputTokens, point.TotalTokens)
	assert.Greater(t, point.DurationSeconds, 0.0)
}

func TestSegmentTurns_EmptyInput(t *testing.T) {
	assert.Empty(t, SegmentTurns(nil, "s1"))
}
