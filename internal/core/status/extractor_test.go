package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNonMatchingLines(t *testing.T) {
	extractor := NewExtractor()

	lines := []string{
		"",
		"2024-02-07 10:00:01.123 Inf CDL: starting sync",
		"availability without the rest of the pattern",
		"unread notification count: 3",
		"WebViewWindowWin: tags=Settings Window previously was visible = false",
		"BluetoothRadioManager: Device watcher is Stopped.",
	}

	for _, line := range lines {
		assert.Empty(t, extractor.Extract(line), "line should yield no facts: %q", line)
	}
}

func TestExtractAvailabilityAndCount(t *testing.T) {
	extractor := NewExtractor()

	facts := extractor.Extract("2024-02-07 10:00:01.123 Inf availability: Away, unread notification count: 3, more text")

	require.Len(t, facts, 2)
	assert.Equal(t, Fact{Kind: FactAvailability, Value: "Away"}, facts[0])
	assert.Equal(t, Fact{Kind: FactNotificationCount, Value: "3"}, facts[1])
}

func TestExtractPreservesSourceCasing(t *testing.T) {
	extractor := NewExtractor()

	facts := extractor.Extract("availability: DoNotDisturb, unread notification count: 0")

	require.Len(t, facts, 2)
	assert.Equal(t, "DoNotDisturb", facts[0].Value)
}

func TestExtractCallStart(t *testing.T) {
	extractor := NewExtractor()

	facts := extractor.Extract("WebViewWindowWin: created window tags=Call status=active Window previously was visible = false")

	require.Len(t, facts, 1)
	assert.Equal(t, Fact{Kind: FactCallState, Value: CallInCall}, facts[0])
}

func TestExtractCallEnd(t *testing.T) {
	extractor := NewExtractor()

	facts := extractor.Extract("2024-02-07 10:05:00 Inf BluetoothRadioManager: Device watcher is Started.")

	require.Len(t, facts, 1)
	assert.Equal(t, Fact{Kind: FactCallState, Value: CallNotInCall}, facts[0])
}

func TestExtractAllKeepsFileOrder(t *testing.T) {
	extractor := NewExtractor()

	facts := extractor.ExtractAll([]string{
		"availability: Available, unread notification count: 0",
		"noise line",
		"WebViewWindowWin: tags=Call Window previously was visible = false",
		"BluetoothRadioManager: Device watcher is Started.",
	})

	require.Len(t, facts, 4)
	assert.Equal(t, FactAvailability, facts[0].Kind)
	assert.Equal(t, FactNotificationCount, facts[1].Kind)
	assert.Equal(t, CallInCall, facts[2].Value)
	assert.Equal(t, CallNotInCall, facts[3].Value)
}

func TestExtractLatestMostRecentMatchWins(t *testing.T) {
	extractor := NewExtractor()

	// Oldest line carries an availability change, newest a call change; only
	// the newest match is surfaced.
	facts := extractor.ExtractLatest([]string{
		"availability: Busy, unread notification count: 2",
		"noise line",
		"WebViewWindowWin: tags=Call Window previously was visible = false",
	})

	require.Len(t, facts, 1)
	assert.Equal(t, Fact{Kind: FactCallState, Value: CallInCall}, facts[0])
}

func TestExtractLatestNoMatches(t *testing.T) {
	extractor := NewExtractor()

	facts := extractor.ExtractLatest([]string{"one", "two", "three"})

	assert.Empty(t, facts)
}
