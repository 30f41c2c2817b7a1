package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekgrid/internal/config"
	"weekgrid/internal/model"
)

const feed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//weekgrid//test//EN
BEGIN:VEVENT
UID:a
DTSTAMP:20250301T000000Z
DTSTART;TZID=America/New_York:20250304T100000
DTEND;TZID=America/New_York:20250304T110000
SUMMARY:Client A Appointment
END:VEVENT
BEGIN:VEVENT
UID:b
DTSTAMP:20250301T000000Z
DTSTART;VALUE=DATE:20250305
DTEND;VALUE=DATE:20250306
SUMMARY:Holiday
END:VEVENT
BEGIN:VEVENT
UID:c
DTSTAMP:20250301T000000Z
DTSTART;TZID=America/New_York:20250306T050000
DTEND;TZID=America/New_York:20250306T053000
SUMMARY:Too early
END:VEVENT
END:VCALENDAR
`

func TestWeekStart(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Thursday afternoon.
	now := time.Date(2025, 3, 6, 15, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, loc), WeekStart(now, loc, time.Monday))
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, loc), WeekStart(now, loc, time.Sunday))

	// Monday is its own week start; Sunday belongs to the previous Monday week.
	mon := time.Date(2025, 3, 3, 0, 0, 0, 0, loc)
	assert.Equal(t, mon, WeekStart(mon, loc, time.Monday))
	sun := time.Date(2025, 3, 9, 23, 0, 0, 0, loc)
	assert.Equal(t, mon, WeekStart(sun, loc, time.Monday))

	// Evaluated in loc, not in the zone of t.
	utc := time.Date(2025, 3, 3, 2, 0, 0, 0, time.UTC) // Sunday 21:00 in New York
	assert.Equal(t, time.Date(2025, 2, 24, 0, 0, 0, 0, loc), WeekStart(utc, loc, time.Monday))

	assert.Equal(t, time.Sunday, ParseWeekday("Sunday"))
	assert.Equal(t, time.Monday, ParseWeekday("monday"))
	assert.Equal(t, time.Monday, ParseWeekday("friday"))
}

func TestBuildFromFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.ReplaceAll(feed, "\n", "\r\n")))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.ICS = []config.ICSConfig{
		{ID: "sp", URL: srv.URL + "/sp.ics", Source: "simplepractice"},
		{ID: "broken", URL: srv.URL + "/broken.ics", Source: "google"},
	}
	cfg.ICS[1].URL = "http://127.0.0.1:1/unreachable.ics"

	b, err := NewBuilder(cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, b.FirstDay)

	now := time.Date(2025, 3, 5, 12, 0, 0, 0, b.Location)
	w := b.Build(context.Background(), now)

	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, b.Location), w.Start)
	require.Len(t, w.Events, 3)
	require.Len(t, w.AllDay, 1)
	assert.Equal(t, "Holiday", w.AllDay[0].Title)

	// The 05:00 event is before the window and skipped.
	require.Len(t, w.Placed, 1)
	pe := w.Placed[0]
	assert.Equal(t, "sp/a@20250304T150000Z", pe.EventID)
	assert.Equal(t, model.SourceSimplePractice, pe.Source)
	assert.Equal(t, 1, pe.DayIndex)
	assert.Equal(t, 8, pe.StartSlot)
	assert.Equal(t, 10, pe.EndSlot)
	assert.Equal(t, []string{"Client A"}, pe.Lines)

	require.Len(t, w.Errors, 1)
	assert.Contains(t, w.Errors[0], "broken")
}

func TestNewBuilderRejectsBadTimezone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timezone = "Mars/Olympus"
	_, err := NewBuilder(cfg)
	assert.Error(t, err)

	_, err = NewBuilder(nil)
	assert.Error(t, err)
}

func TestWriteArtifacts(t *testing.T) {
	cfg := config.DefaultConfig()
	b, err := NewBuilder(cfg)
	require.NoError(t, err)

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, b.Location)
	w := b.Place([]model.Event{{
		ID:     "x",
		Start:  start.Add(9 * time.Hour),
		End:    start.Add(10 * time.Hour),
		Title:  "Planning",
		Source: model.SourceGoogle,
	}}, start)
	require.Len(t, w.Placed, 1)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteArtifacts(dir, w, cfg.Layout))

	png, err := os.ReadFile(filepath.Join(dir, PreviewFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))

	js, err := os.ReadFile(filepath.Join(dir, PlacedFile))
	require.NoError(t, err)
	var back Week
	require.NoError(t, json.Unmarshal(js, &back))
	require.Len(t, back.Placed, 1)
	assert.Equal(t, "x", back.Placed[0].EventID)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
