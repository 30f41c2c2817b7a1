package model

import (
	"errors"
	"strings"
	"time"
)

// Source identifies which calendar an event came from. The set is closed;
// anything unrecognized maps to SourceUnknown.
type Source string

const (
	SourceSimplePractice Source = "simplepractice"
	SourceGoogle         Source = "google"
	SourceManual         Source = "manual"
	SourceUnknown        Source = "unknown"
)

// ParseSource normalizes a free-form source tag.
func ParseSource(s string) Source {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simplepractice", "simple_practice", "simple-practice":
		return SourceSimplePractice
	case "google", "googlecalendar", "google_calendar":
		return SourceGoogle
	case "manual":
		return SourceManual
	default:
		return SourceUnknown
	}
}

// Event is a single concrete calendar event (after recurrence expansion and
// timezone normalization) as consumed by the grid placer.
type Event struct {
	ID string `json:"id"`

	// Start / End are in the configured display timezone.
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`

	Title       string `json:"title"`
	Source      Source `json:"source"`
	Notes       string `json:"notes,omitempty"`
	ActionItems string `json:"actionItems,omitempty"`

	AllDay bool `json:"allDay,omitempty"`
}

var (
	ErrMissingTime = errors.New("event: missing start or end time")
	ErrEmptyRange  = errors.New("event: end is not after start")
)

// Validate reports why an event cannot be placed, or nil.
func (e Event) Validate() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrMissingTime
	}
	if !e.End.After(e.Start) {
		return ErrEmptyRange
	}
	return nil
}

// RawEvent is the wire shape accepted from external callers: timestamps are
// strings and may be missing or malformed.
type RawEvent struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Notes       string `json:"notes,omitempty"`
	ActionItems string `json:"actionItems,omitempty"`
}

// Accepted timestamp layouts for RawEvent, tried in order.
var rawLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses s in one of the accepted layouts. Layouts without a
// zone are interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingTime
	}
	if loc == nil {
		loc = time.Local
	}
	var lastErr error
	for _, layout := range rawLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ToEvent converts a RawEvent. Unparsable timestamps become zero values so
// that the placer drops the event instead of the caller failing the batch.
func (r RawEvent) ToEvent(id string, loc *time.Location) Event {
	start, _ := ParseTimestamp(r.StartTime, loc)
	end, _ := ParseTimestamp(r.EndTime, loc)
	return Event{
		ID:          id,
		Start:       start,
		End:         end,
		Title:       r.Title,
		Source:      ParseSource(r.Source),
		Notes:       r.Notes,
		ActionItems: r.ActionItems,
	}
}
