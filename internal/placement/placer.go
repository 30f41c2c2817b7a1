// Package placement maps calendar events onto the weekly grid: which day
// column and half-hour slots an event covers, the pixel rectangle it is drawn
// in, and the wrapped label drawn inside it.
package placement

import (
	"errors"
	"math"
	"sort"
	"time"

	"weekgrid/internal/grid"
	appLog "weekgrid/internal/log"
	"weekgrid/internal/model"
	"weekgrid/internal/textmetric"
)

// Rect is an axis-aligned rectangle in page units, origin top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EventColors is the color triple used to draw one event.
type EventColors struct {
	Fill   grid.Color `json:"fill"`
	Stroke grid.Color `json:"stroke"`
	Text   grid.Color `json:"text"`
}

// PlacedEvent is an event resolved to grid coordinates, ready for a renderer.
// Lines holds at most MaxTitleLines wrapped title lines; TimeLabel is
// "HH:MM–HH:MM", or empty when the title uses every line.
type PlacedEvent struct {
	EventID   string       `json:"eventId"`
	Source    model.Source `json:"source"`
	DayIndex  int          `json:"dayIndex"`
	StartSlot int          `json:"startSlot"`
	EndSlot   int          `json:"endSlot"`
	Rect      Rect         `json:"rect"`
	Lines     []string     `json:"lines"`
	TimeLabel string       `json:"timeLabel,omitempty"`
	Colors    EventColors  `json:"colors"`
}

// Reasons an event is skipped. They never escape PlaceAll.
var (
	ErrDayOutOfRange = errors.New("placement: day outside week")
	ErrBeforeWindow  = errors.New("placement: starts or ends before visible window")
	ErrAfterWindow   = errors.New("placement: starts after visible window")
	errMissingLayout = errors.New("placement: layout has no slots")
)

// Placer places events on a Layout. The zero Measurer falls back to the
// shared Go Regular face.
type Placer struct {
	Layout   grid.Layout
	Measurer textmetric.Measurer
}

// New returns a Placer using the Go Regular font metrics.
func New(l grid.Layout) *Placer {
	return &Placer{Layout: l, Measurer: textmetric.Regular()}
}

func (p *Placer) measurer() textmetric.Measurer {
	if p.Measurer == nil {
		return textmetric.Regular()
	}
	return p.Measurer
}

// Place maps ev onto the grid of the week beginning at weekStart. The boolean
// is false when the event is skipped.
func (p *Placer) Place(ev model.Event, weekStart time.Time) (PlacedEvent, bool) {
	pe, err := p.place(ev, weekStart)
	return pe, err == nil
}

// place is Place with the skip reason.
func (p *Placer) place(ev model.Event, weekStart time.Time) (PlacedEvent, error) {
	l := p.Layout
	if err := ev.Validate(); err != nil {
		return PlacedEvent{}, err
	}
	slotCount := l.SlotCount()
	if slotCount == 0 {
		return PlacedEvent{}, errMissingLayout
	}

	day := DayIndex(ev.Start, weekStart)
	if day < 0 || day >= grid.DaysPerWeek {
		return PlacedEvent{}, ErrDayOutOfRange
	}

	loc := weekStart.Location()
	start := ev.Start.In(loc)
	end := ev.End.In(loc)
	startSlot := l.Window.SlotIndex(start.Hour(), start.Minute())
	endSlot := l.Window.SlotIndex(end.Hour(), end.Minute())
	if startSlot < 0 || endSlot < 0 {
		return PlacedEvent{}, ErrBeforeWindow
	}
	if startSlot >= slotCount {
		return PlacedEvent{}, ErrAfterWindow
	}
	if endSlot > slotCount {
		endSlot = slotCount
	}

	pad := l.CellPadding
	rect := Rect{
		X:     l.DayColumnX(day) + pad,
		Y:     l.SlotY(startSlot) + pad,
		Width: l.DayColumnWidth - 2*pad,
		Height: math.Max(
			l.TimeSlotHeight-2*pad,
			float64(endSlot-startSlot)*l.TimeSlotHeight-2*pad,
		),
	}

	limit := l.DayColumnWidth - l.TextInset
	lines := Wrap(CleanTitle(ev.Title), limit, l.Fonts.EventTitle, p.measurer(), MaxTitleLines)

	pe := PlacedEvent{
		EventID:   ev.ID,
		Source:    ev.Source,
		DayIndex:  day,
		StartSlot: startSlot,
		EndSlot:   endSlot,
		Rect:      rect,
		Lines:     lines,
		Colors:    ColorsFor(ev.Source, l.Colors),
	}
	if len(lines) < MaxTitleLines {
		pe.TimeLabel = TimeLabel(start, end)
	}
	return pe, nil
}

// PlaceAll places every event and returns the placed ones ordered by day,
// start slot and event ID. Skipped events are logged and otherwise ignored.
func (p *Placer) PlaceAll(events []model.Event, weekStart time.Time) []PlacedEvent {
	out := make([]PlacedEvent, 0, len(events))
	skipped := 0
	for _, ev := range events {
		pe, err := p.place(ev, weekStart)
		if err != nil {
			skipped++
			appLog.Debug("placement: event skipped", "id", ev.ID, "title", ev.Title, "reason", err.Error())
			continue
		}
		out = append(out, pe)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DayIndex != b.DayIndex {
			return a.DayIndex < b.DayIndex
		}
		if a.StartSlot != b.StartSlot {
			return a.StartSlot < b.StartSlot
		}
		return a.EventID < b.EventID
	})
	if skipped > 0 {
		appLog.Info("placement: events skipped", "skipped", skipped, "placed", len(out))
	}
	return out
}

// PlaceMap places events given as an id → raw event mapping, parsing
// timestamps in loc. Unparsable timestamps cause the event to be skipped.
func (p *Placer) PlaceMap(raw map[string]model.RawEvent, weekStart time.Time, loc *time.Location) []PlacedEvent {
	events := make([]model.Event, 0, len(raw))
	for id, r := range raw {
		events = append(events, r.ToEvent(id, loc))
	}
	return p.PlaceAll(events, weekStart)
}

// DayIndex is the number of calendar days from weekStart's date to t's date,
// both taken in weekStart's location. Days of 23 or 25 hours count as one.
func DayIndex(t, weekStart time.Time) int {
	t = t.In(weekStart.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	first := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(first) / (24 * time.Hour))
}

// TimeLabel formats a 24-hour "HH:MM–HH:MM" range.
func TimeLabel(start, end time.Time) string {
	return start.Format("15:04") + "–" + end.Format("15:04")
}

// ColorsFor selects the fill by source; unknown sources use the Google
// color. The stroke is the fill at 80% luminance.
func ColorsFor(src model.Source, c grid.Colors) EventColors {
	var fill grid.Color
	switch src {
	case model.SourceSimplePractice:
		fill = c.SimplePractice
	case model.SourceGoogle:
		fill = c.Google
	case model.SourceManual:
		fill = c.Holiday
	default:
		fill = c.Google
	}
	text := grid.RGB(0, 0, 0)
	if fill.Luma() < 110 {
		text = grid.RGB(255, 255, 255)
	}
	return EventColors{Fill: fill, Stroke: fill.Scale(0.8), Text: text}
}
