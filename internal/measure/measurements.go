// Package measure holds the observed-layout record compared by the audit and
// the logic that turns raw rendered geometry into that record.
package measure

import (
	"errors"

	"weekgrid/internal/grid"
)

// Measurements is an observed (or configured) set of layout parameters. It
// mirrors grid.Layout field for field, minus the placement-only knobs.
type Measurements struct {
	PageWidth       float64 `json:"pageWidth"`
	PageHeight      float64 `json:"pageHeight"`
	Margin          float64 `json:"margin"`
	HeaderHeight    float64 `json:"headerHeight"`
	LegendHeight    float64 `json:"legendHeight"`
	TimeColumnWidth float64 `json:"timeColumnWidth"`
	DayColumnWidth  float64 `json:"dayColumnWidth"`
	TimeSlotHeight  float64 `json:"timeSlotHeight"`

	Fonts  grid.FontSizes `json:"fonts"`
	Colors grid.Colors    `json:"colors"`

	GridLineWidth float64 `json:"gridLineWidth"`
	BorderWidth   float64 `json:"borderWidth"`
}

// Property names one numeric field of Measurements.
type Property string

const (
	PropPageWidth       Property = "pageWidth"
	PropPageHeight      Property = "pageHeight"
	PropMargin          Property = "margin"
	PropHeaderHeight    Property = "headerHeight"
	PropLegendHeight    Property = "legendHeight"
	PropTimeColumnWidth Property = "timeColumnWidth"
	PropDayColumnWidth  Property = "dayColumnWidth"
	PropTimeSlotHeight  Property = "timeSlotHeight"
	PropFontTitle       Property = "fonts.title"
	PropFontWeekInfo    Property = "fonts.weekInfo"
	PropFontDayHeader   Property = "fonts.dayHeader"
	PropFontTimeHour    Property = "fonts.timeHour"
	PropFontTimeHalf    Property = "fonts.timeHalf"
	PropFontEventTitle  Property = "fonts.eventTitle"
	PropFontEventTime   Property = "fonts.eventTime"
	PropFontLegend      Property = "fonts.legend"
	PropGridLineWidth   Property = "gridLineWidth"
	PropBorderWidth     Property = "borderWidth"
)

// Properties lists every numeric property in declaration order.
var Properties = []Property{
	PropPageWidth, PropPageHeight, PropMargin, PropHeaderHeight, PropLegendHeight,
	PropTimeColumnWidth, PropDayColumnWidth, PropTimeSlotHeight,
	PropFontTitle, PropFontWeekInfo, PropFontDayHeader, PropFontTimeHour,
	PropFontTimeHalf, PropFontEventTitle, PropFontEventTime, PropFontLegend,
	PropGridLineWidth, PropBorderWidth,
}

// Value returns the value of p, or false if p is not a known property.
func (m Measurements) Value(p Property) (float64, bool) {
	switch p {
	case PropPageWidth:
		return m.PageWidth, true
	case PropPageHeight:
		return m.PageHeight, true
	case PropMargin:
		return m.Margin, true
	case PropHeaderHeight:
		return m.HeaderHeight, true
	case PropLegendHeight:
		return m.LegendHeight, true
	case PropTimeColumnWidth:
		return m.TimeColumnWidth, true
	case PropDayColumnWidth:
		return m.DayColumnWidth, true
	case PropTimeSlotHeight:
		return m.TimeSlotHeight, true
	case PropFontTitle:
		return m.Fonts.Title, true
	case PropFontWeekInfo:
		return m.Fonts.WeekInfo, true
	case PropFontDayHeader:
		return m.Fonts.DayHeader, true
	case PropFontTimeHour:
		return m.Fonts.TimeHour, true
	case PropFontTimeHalf:
		return m.Fonts.TimeHalf, true
	case PropFontEventTitle:
		return m.Fonts.EventTitle, true
	case PropFontEventTime:
		return m.Fonts.EventTime, true
	case PropFontLegend:
		return m.Fonts.Legend, true
	case PropGridLineWidth:
		return m.GridLineWidth, true
	case PropBorderWidth:
		return m.BorderWidth, true
	}
	return 0, false
}

// IsTypography reports whether p is a font size.
func (p Property) IsTypography() bool {
	switch p {
	case PropFontTitle, PropFontWeekInfo, PropFontDayHeader, PropFontTimeHour,
		PropFontTimeHalf, PropFontEventTitle, PropFontEventTime, PropFontLegend:
		return true
	}
	return false
}

// ColorRole names one entry of the color table.
type ColorRole string

const (
	ColorSimplePractice ColorRole = "simplePractice"
	ColorGoogle         ColorRole = "google"
	ColorHoliday        ColorRole = "holiday"
	ColorGridLine       ColorRole = "gridLine"
	ColorBackground     ColorRole = "background"
	ColorTimeSlotBg     ColorRole = "timeSlotBg"
	ColorHourBg         ColorRole = "hourBg"
)

var ColorRoles = []ColorRole{
	ColorSimplePractice, ColorGoogle, ColorHoliday, ColorGridLine,
	ColorBackground, ColorTimeSlotBg, ColorHourBg,
}

func (m Measurements) Color(r ColorRole) (grid.Color, bool) {
	c := m.Colors
	switch r {
	case ColorSimplePractice:
		return c.SimplePractice, true
	case ColorGoogle:
		return c.Google, true
	case ColorHoliday:
		return c.Holiday, true
	case ColorGridLine:
		return c.GridLine, true
	case ColorBackground:
		return c.Background, true
	case ColorTimeSlotBg:
		return c.TimeSlotBg, true
	case ColorHourBg:
		return c.HourBg, true
	}
	return grid.Color{}, false
}

// Fallback returns the previously validated dashboard snapshot used whenever
// live extraction is unavailable.
func Fallback() Measurements {
	return Measurements{
		PageWidth:       890,
		PageHeight:      1580,
		Margin:          20,
		HeaderHeight:    60,
		LegendHeight:    40,
		TimeColumnWidth: 80,
		DayColumnWidth:  110,
		TimeSlotHeight:  40,
		Fonts: grid.FontSizes{
			Title:      24,
			WeekInfo:   16,
			DayHeader:  14,
			TimeHour:   12,
			TimeHalf:   10,
			EventTitle: 11,
			EventTime:  10,
			Legend:     12,
		},
		Colors:        grid.DefaultColors,
		GridLineWidth: 1,
		BorderWidth:   1,
	}
}

// FromLayout describes a configured export layout as a measurement set, the
// candidate side of an audit.
func FromLayout(l grid.Layout) Measurements {
	return Measurements{
		PageWidth:       l.PageWidth,
		PageHeight:      l.PageHeight,
		Margin:          l.Margin,
		HeaderHeight:    l.HeaderHeight,
		LegendHeight:    l.LegendHeight,
		TimeColumnWidth: l.TimeColumnWidth,
		DayColumnWidth:  l.DayColumnWidth,
		TimeSlotHeight:  l.TimeSlotHeight,
		Fonts:           l.Fonts,
		Colors:          l.Colors,
		GridLineWidth:   l.GridLineWidth,
		BorderWidth:     l.BorderWidth,
	}
}

// ErrNoMeasurements is returned when a layout is generated before any
// extraction has happened.
var ErrNoMeasurements = errors.New("measure: no measurements extracted yet")

// GenerateLayout builds an export layout that reproduces m. Fields that have
// no measured counterpart (window, padding, inset) are taken from base.
func GenerateLayout(m *Measurements, base grid.Layout) (grid.Layout, error) {
	if m == nil {
		return grid.Layout{}, ErrNoMeasurements
	}
	l := base
	l.PageWidth = m.PageWidth
	l.PageHeight = m.PageHeight
	l.Margin = m.Margin
	l.HeaderHeight = m.HeaderHeight
	l.LegendHeight = m.LegendHeight
	l.TimeColumnWidth = m.TimeColumnWidth
	l.DayColumnWidth = m.DayColumnWidth
	l.TimeSlotHeight = m.TimeSlotHeight
	l.Fonts = m.Fonts
	l.Colors = m.Colors
	l.GridLineWidth = m.GridLineWidth
	l.BorderWidth = m.BorderWidth
	l.Normalize()
	return l, nil
}
