package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	assert.Equal(t, SourceSimplePractice, ParseSource(" SimplePractice "))
	assert.Equal(t, SourceSimplePractice, ParseSource("simple-practice"))
	assert.Equal(t, SourceGoogle, ParseSource("google_calendar"))
	assert.Equal(t, SourceManual, ParseSource("MANUAL"))
	assert.Equal(t, SourceUnknown, ParseSource("outlook"))
	assert.Equal(t, SourceUnknown, ParseSource(""))
}

func TestParseTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := ParseTimestamp("2025-03-04T10:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 0, 0, 0, loc), got)

	got, err = ParseTimestamp("2025-03-04 10:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 30, 0, 0, loc), got)

	// Zoned input is converted into loc.
	got, err = ParseTimestamp("2025-03-04T15:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, loc, got.Location())

	_, err = ParseTimestamp("  ", loc)
	assert.ErrorIs(t, err, ErrMissingTime)
	_, err = ParseTimestamp("yesterday", loc)
	assert.Error(t, err)
}

func TestRawEventToEvent(t *testing.T) {
	r := RawEvent{StartTime: "2025-03-04T10:00", EndTime: "garbage", Title: "x", Source: "google"}
	ev := r.ToEvent("id1", time.UTC)
	assert.Equal(t, "id1", ev.ID)
	assert.Equal(t, SourceGoogle, ev.Source)
	assert.True(t, ev.End.IsZero())
	assert.ErrorIs(t, ev.Validate(), ErrMissingTime)

	r.EndTime = "2025-03-04T09:00"
	assert.ErrorIs(t, r.ToEvent("id1", time.UTC).Validate(), ErrEmptyRange)

	r.EndTime = "2025-03-04T11:00"
	assert.NoError(t, r.ToEvent("id1", time.UTC).Validate())
}
