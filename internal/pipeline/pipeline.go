// Package pipeline resolves the displayed week and turns the configured ICS
// feeds into placed events.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"weekgrid/internal/config"
	"weekgrid/internal/grid"
	"weekgrid/internal/ics"
	appLog "weekgrid/internal/log"
	"weekgrid/internal/model"
	"weekgrid/internal/placement"
)

// Week is one rendered week.
type Week struct {
	Start       time.Time               `json:"weekStart"`
	Events      []model.Event           `json:"events"`
	Placed      []placement.PlacedEvent `json:"placed"`
	AllDay      []model.Event           `json:"allDay,omitempty"`
	Errors      []string                `json:"errors,omitempty"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// ParseWeekday maps a config week_start value to a weekday; anything other
// than "sunday" is Monday.
func ParseWeekday(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// WeekStart returns midnight of the most recent first weekday at or before t,
// in loc.
func WeekStart(t time.Time, loc *time.Location, first time.Weekday) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	back := (int(t.Weekday()) - int(first) + 7) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-back, 0, 0, 0, 0, loc)
}

// Builder assembles weeks from ICS sources.
type Builder struct {
	Fetcher  *ics.Fetcher
	Sources  []ics.Source
	Location *time.Location
	FirstDay time.Weekday
	Placer   *placement.Placer
}

// NewBuilder wires a Builder from configuration.
func NewBuilder(cfg *config.Config) (*Builder, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is nil")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load timezone %q: %w", cfg.Timezone, err)
	}
	sources := make([]ics.Source, 0, len(cfg.ICS))
	for _, c := range cfg.ICS {
		sources = append(sources, ics.Source{ID: c.ID, URL: c.URL, Kind: model.ParseSource(c.Source)})
	}
	return &Builder{
		Fetcher:  ics.NewFetcher(cfg.CacheDir),
		Sources:  sources,
		Location: loc,
		FirstDay: ParseWeekday(cfg.WeekStart),
		Placer:   placement.New(cfg.Layout),
	}, nil
}

// WeekOf returns the start of the week containing t.
func (b *Builder) WeekOf(t time.Time) time.Time {
	return WeekStart(t, b.Location, b.FirstDay)
}

// Events fetches, parses and expands every source for the week starting at
// weekStart. Per-source failures are returned alongside whatever succeeded.
func (b *Builder) Events(ctx context.Context, weekStart time.Time) ([]model.Event, []error) {
	results, errs := b.Fetcher.FetchAll(ctx, b.Sources)

	var parsed []ics.ParsedEvent
	for _, r := range results {
		evs, err := ics.ParseICS(r.Source, r.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("ics %s: %w", r.Source.ID, err))
			continue
		}
		// UIDs are only unique per feed.
		for i := range evs {
			evs[i].UID = r.Source.ID + "/" + evs[i].UID
		}
		parsed = append(parsed, evs...)
	}

	res, err := ics.ExpandOccurrences(parsed, ics.ExpandConfig{
		DisplayLocation: b.Location,
		RangeStart:      weekStart,
		RangeEnd:        weekStart.AddDate(0, 0, grid.DaysPerWeek),
	})
	if err != nil {
		return nil, append(errs, err)
	}
	return res.Events, errs
}

// Build fetches the week containing now and places its events.
func (b *Builder) Build(ctx context.Context, now time.Time) Week {
	start := b.WeekOf(now)
	events, errs := b.Events(ctx, start)
	w := b.Place(events, start)
	for _, err := range errs {
		w.Errors = append(w.Errors, err.Error())
	}
	appLog.Info("pipeline: week built",
		"week_start", start.Format("2006-01-02"),
		"events", len(w.Events),
		"placed", len(w.Placed),
		"errors", len(w.Errors),
	)
	return w
}

// Place lays out events already in hand. All-day events are listed
// separately; they have no slot on the time grid.
func (b *Builder) Place(events []model.Event, weekStart time.Time) Week {
	w := Week{
		Start:       weekStart,
		Events:      make([]model.Event, 0, len(events)),
		Placed:      []placement.PlacedEvent{},
		GeneratedAt: time.Now().In(b.Location),
	}
	timed := make([]model.Event, 0, len(events))
	for _, ev := range events {
		w.Events = append(w.Events, ev)
		if ev.AllDay {
			w.AllDay = append(w.AllDay, ev)
			continue
		}
		timed = append(timed, ev)
	}
	w.Placed = b.Placer.PlaceAll(timed, weekStart)
	return w
}
