package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"weekgrid/internal/grid"
	"weekgrid/internal/model"
	"weekgrid/internal/placement"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type slotView struct {
	Label string
	Hour  bool
}

type eventView struct {
	ID        string
	Source    model.Source
	Lines     []string
	TimeLabel string
	Style     template.CSS
}

type dayView struct {
	Index  int
	Label  string
	Events []eventView
}

type dashboardView struct {
	Title    string
	WeekInfo string
	CSS      template.CSS
	Slots    []slotView
	Days     []dayView
	AllDay   []string
}

// renderDashboard writes the HTML dashboard for the week starting at
// weekStart. Geometry comes from l so the DOM measures back to l.
func renderDashboard(w io.Writer, l grid.Layout, weekStart time.Time, placed []placement.PlacedEvent, allDay []model.Event) error {
	v := dashboardView{
		Title:    "Weekly Calendar",
		WeekInfo: weekStart.Format("Jan 2") + " – " + weekStart.AddDate(0, 0, grid.DaysPerWeek-1).Format("Jan 2, 2006"),
		CSS:      dashboardCSS(l),
	}
	for i, label := range grid.TimeSlots(l.Window) {
		v.Slots = append(v.Slots, slotView{Label: label, Hour: i%2 == 0})
	}
	for d := 0; d < grid.DaysPerWeek; d++ {
		v.Days = append(v.Days, dayView{
			Index: d,
			Label: weekStart.AddDate(0, 0, d).Format("Mon 1/2"),
		})
	}
	for _, pe := range placed {
		if pe.DayIndex < 0 || pe.DayIndex >= grid.DaysPerWeek {
			continue
		}
		v.Days[pe.DayIndex].Events = append(v.Days[pe.DayIndex].Events, eventView{
			ID:        pe.EventID,
			Source:    pe.Source,
			Lines:     pe.Lines,
			TimeLabel: pe.TimeLabel,
			Style:     eventStyle(l, pe),
		})
	}
	for _, ev := range allDay {
		v.AllDay = append(v.AllDay, ev.Start.Format("Mon")+": "+placement.CleanTitle(ev.Title))
	}
	return dashboardTmpl.Execute(w, v)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// eventStyle positions an event inside its day column.
func eventStyle(l grid.Layout, pe placement.PlacedEvent) template.CSS {
	left := pe.Rect.X - l.DayColumnX(pe.DayIndex)
	top := pe.Rect.Y - l.GridStartY()
	return template.CSS(fmt.Sprintf(
		"left:%s;top:%s;width:%s;height:%s;background:%s;border-color:%s;color:%s",
		px(left), px(top), px(pe.Rect.Width), px(pe.Rect.Height),
		pe.Colors.Fill, pe.Colors.Stroke, pe.Colors.Text,
	))
}

func dashboardCSS(l grid.Layout) template.CSS {
	c := l.Colors
	f := l.Fonts
	var b strings.Builder
	rule := func(sel, body string, args ...any) {
		b.WriteString(sel)
		b.WriteString("{")
		fmt.Fprintf(&b, body, args...)
		b.WriteString("}\n")
	}
	rule(".wg-page", "box-sizing:border-box;width:%s;min-height:%s;padding:%s;background:%s;font-family:sans-serif",
		px(l.PageWidth), px(l.PageHeight), px(l.Margin), c.Background)
	rule(".wg-header", "position:relative;height:%s", px(l.HeaderHeight))
	rule(".wg-title", "font-size:%s;font-weight:bold", px(f.Title))
	rule(".wg-week-info", "float:right;font-size:%s", px(f.WeekInfo))
	rule(".wg-day-headers", "position:absolute;bottom:0;left:%s;display:flex", px(l.TimeColumnWidth))
	rule(".wg-day-header", "width:%s;text-align:center;font-weight:bold;font-size:%s", px(l.DayColumnWidth), px(f.DayHeader))
	rule(".wg-legend", "display:flex;align-items:center;gap:16px;height:%s", px(l.LegendHeight))
	rule(".wg-swatch", "display:inline-block;vertical-align:middle;margin-right:4px;width:%s;height:%s", px(f.Legend), px(f.Legend))
	rule(".wg-swatch.simplepractice", "background:%s", c.SimplePractice)
	rule(".wg-swatch.google", "background:%s", c.Google)
	rule(".wg-swatch.holiday", "background:%s", c.Holiday)
	rule(".wg-legend-label,.wg-all-day", "font-size:%s", px(f.Legend))
	rule(".wg-grid", "display:grid;width:max-content;grid-template-columns:%s repeat(%d,%s);border:%s solid #000",
		px(l.TimeColumnWidth), grid.DaysPerWeek, px(l.DayColumnWidth), px(l.BorderWidth))
	rule(".wg-time-col,.wg-day-col", "position:relative")
	rule(".wg-slot", "box-sizing:border-box;height:%s;border-top:%s solid %s;background:%s",
		px(l.TimeSlotHeight), px(l.GridLineWidth), c.GridLine, c.TimeSlotBg)
	rule(".wg-slot.wg-hour", "background:%s", c.HourBg)
	rule(".wg-time-hour", "font-weight:bold;font-size:%s", px(f.TimeHour))
	rule(".wg-time-half", "font-size:%s", px(f.TimeHalf))
	rule(".wg-event", "position:absolute;box-sizing:border-box;overflow:hidden;border:1px solid;padding:1px %s",
		px(l.TextInset/2))
	rule(".wg-event-title", "font-weight:bold;line-height:1.1;font-size:%s", px(f.EventTitle))
	rule(".wg-event-time", "font-size:%s", px(f.EventTime))
	return template.CSS(b.String())
}
