package measure

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"weekgrid/internal/grid"
	appLog "weekgrid/internal/log"
)

// Source produces a measurement set from some rendered layout.
type Source interface {
	Measure(ctx context.Context) (Measurements, error)
}

// FallbackSource always returns the fallback snapshot.
type FallbackSource struct{}

func (FallbackSource) Measure(context.Context) (Measurements, error) {
	return Fallback(), nil
}

// Region is the bounding box of a rendered element, in CSS pixels.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DOMFonts are computed font sizes (px) of representative elements. A nil
// entry means the element was not found.
type DOMFonts struct {
	Title      *float64 `json:"title"`
	WeekInfo   *float64 `json:"weekInfo"`
	DayHeader  *float64 `json:"dayHeader"`
	TimeHour   *float64 `json:"timeHour"`
	TimeHalf   *float64 `json:"timeHalf"`
	EventTitle *float64 `json:"eventTitle"`
	EventTime  *float64 `json:"eventTime"`
	Legend     *float64 `json:"legend"`
}

// DOMColors are computed CSS colors ("rgb(r, g, b)" or "#rrggbb").
type DOMColors struct {
	SimplePractice *string `json:"simplePractice"`
	Google         *string `json:"google"`
	Holiday        *string `json:"holiday"`
	GridLine       *string `json:"gridLine"`
	Background     *string `json:"background"`
	TimeSlotBg     *string `json:"timeSlotBg"`
	HourBg         *string `json:"hourBg"`
}

// DOMSnapshot is the raw result of querying a rendered dashboard. Every
// region is optional; Grid is required for the snapshot to be usable at all.
type DOMSnapshot struct {
	Page       *Region `json:"page"`
	Header     *Region `json:"header"`
	Legend     *Region `json:"legend"`
	Grid       *Region `json:"grid"`
	TimeColumn *Region `json:"timeColumn"`
	DayColumn  *Region `json:"dayColumn"`
	TimeSlot   *Region `json:"timeSlot"`

	// ColumnCount and ColumnGap come from the grid's computed
	// grid-template-columns and column-gap.
	ColumnCount int     `json:"columnCount"`
	ColumnGap   float64 `json:"columnGap"`

	Fonts  DOMFonts  `json:"fonts"`
	Colors DOMColors `json:"colors"`

	GridLineWidth *float64 `json:"gridLineWidth"`
	BorderWidth   *float64 `json:"borderWidth"`
}

// Normalize converts a snapshot into Measurements. Without a grid region the
// whole fallback snapshot is returned and complete is false; otherwise each
// absent region falls back individually.
func Normalize(s DOMSnapshot) (m Measurements, complete bool) {
	m = Fallback()
	if s.Grid == nil || s.Grid.Width <= 0 {
		return m, false
	}
	complete = true
	missing := func(name string) {
		complete = false
		appLog.Debug("measure: region missing, using fallback", "region", name)
	}

	if s.Page != nil && s.Page.Width > 0 {
		m.PageWidth = round2(s.Page.Width)
		m.PageHeight = round2(s.Page.Height)
		if margin := s.Grid.X - s.Page.X; margin >= 0 {
			m.Margin = round2(margin)
		}
	} else {
		missing("page")
	}
	if s.Header != nil {
		m.HeaderHeight = round2(s.Header.Height)
	} else {
		missing("header")
	}
	if s.Legend != nil {
		m.LegendHeight = round2(s.Legend.Height)
	} else {
		missing("legend")
	}
	if s.TimeColumn != nil && s.TimeColumn.Width > 0 {
		m.TimeColumnWidth = round2(s.TimeColumn.Width)
	} else {
		missing("timeColumn")
	}
	switch {
	case s.DayColumn != nil && s.DayColumn.Width > 0:
		m.DayColumnWidth = round2(s.DayColumn.Width)
	case s.ColumnCount == grid.DaysPerWeek+1:
		// Derive from the grid box: one time column plus seven day columns.
		w := (s.Grid.Width - m.TimeColumnWidth - grid.DaysPerWeek*s.ColumnGap) / grid.DaysPerWeek
		if w > 0 {
			m.DayColumnWidth = round2(w)
		}
	default:
		missing("dayColumn")
	}
	if s.TimeSlot != nil && s.TimeSlot.Height > 0 {
		m.TimeSlotHeight = round2(s.TimeSlot.Height)
	} else {
		missing("timeSlot")
	}

	setF := func(dst *float64, v *float64) {
		if v != nil && *v > 0 {
			*dst = round2(*v)
		}
	}
	setF(&m.Fonts.Title, s.Fonts.Title)
	setF(&m.Fonts.WeekInfo, s.Fonts.WeekInfo)
	setF(&m.Fonts.DayHeader, s.Fonts.DayHeader)
	setF(&m.Fonts.TimeHour, s.Fonts.TimeHour)
	setF(&m.Fonts.TimeHalf, s.Fonts.TimeHalf)
	setF(&m.Fonts.EventTitle, s.Fonts.EventTitle)
	setF(&m.Fonts.EventTime, s.Fonts.EventTime)
	setF(&m.Fonts.Legend, s.Fonts.Legend)
	setF(&m.GridLineWidth, s.GridLineWidth)
	setF(&m.BorderWidth, s.BorderWidth)

	setC := func(dst *grid.Color, v *string) {
		if v == nil {
			return
		}
		if c, err := ParseCSSColor(*v); err == nil {
			*dst = c
		}
	}
	setC(&m.Colors.SimplePractice, s.Colors.SimplePractice)
	setC(&m.Colors.Google, s.Colors.Google)
	setC(&m.Colors.Holiday, s.Colors.Holiday)
	setC(&m.Colors.GridLine, s.Colors.GridLine)
	setC(&m.Colors.Background, s.Colors.Background)
	setC(&m.Colors.TimeSlotBg, s.Colors.TimeSlotBg)
	setC(&m.Colors.HourBg, s.Colors.HourBg)

	return m, complete
}

// SnapshotSource serves a fixed DOM snapshot, e.g. one posted by a browser.
type SnapshotSource struct {
	Snapshot DOMSnapshot
}

func (s SnapshotSource) Measure(context.Context) (Measurements, error) {
	m, _ := Normalize(s.Snapshot)
	return m, nil
}

// Extract measures through src. Any source failure is logged and the
// fallback snapshot returned, so an audit always has a reference.
func Extract(ctx context.Context, src Source) Measurements {
	if src == nil {
		return Fallback()
	}
	m, err := src.Measure(ctx)
	if err != nil {
		appLog.Error("measure: extraction failed, using fallback snapshot", err)
		return Fallback()
	}
	return m
}

// ParseCSSColor understands the computed-style forms "rgb(r, g, b)",
// "rgba(r, g, b, a)" and hex colors.
func ParseCSSColor(s string) (grid.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		return grid.ParseColor(s)
	}
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") || !strings.HasPrefix(s, "rgb") {
		return grid.Color{}, fmt.Errorf("measure: unsupported css color %q", s)
	}
	inner := s[open+1 : len(s)-1]
	inner = strings.ReplaceAll(inner, "/", " ")
	parts := strings.FieldsFunc(inner, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) < 3 {
		return grid.Color{}, fmt.Errorf("measure: unsupported css color %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return grid.Color{}, fmt.Errorf("measure: css color %q: %w", s, err)
		}
		ch[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return grid.RGB(ch[0], ch[1], ch[2]), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
