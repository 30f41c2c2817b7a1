package capture

// Class names the dashboard template renders and measureScript queries.
const (
	ClassPage        = "wg-page"
	ClassHeader      = "wg-header"
	ClassTitle       = "wg-title"
	ClassWeekInfo    = "wg-week-info"
	ClassLegend      = "wg-legend"
	ClassSwatch      = "wg-swatch"
	ClassGrid        = "wg-grid"
	ClassTimeColumn  = "wg-time-col"
	ClassDayColumn   = "wg-day-col"
	ClassDayHeader   = "wg-day-header"
	ClassSlot        = "wg-slot"
	ClassHourSlot    = "wg-hour"
	ClassTimeHour    = "wg-time-hour"
	ClassTimeHalf    = "wg-time-half"
	ClassEvent       = "wg-event"
	ClassEventTitle  = "wg-event-title"
	ClassEventTime   = "wg-event-time"
	ClassLegendLabel = "wg-legend-label"
)

// measureScript returns a JSON object shaped like measure.DOMSnapshot.
// Missing elements yield null so the Go side can fall back per field.
const measureScript = `(() => {
  const q = (s) => document.querySelector(s);
  const box = (s) => {
    const e = q(s);
    if (!e) return null;
    const r = e.getBoundingClientRect();
    return { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height };
  };
  const px = (s, prop) => {
    const e = q(s);
    if (!e) return null;
    const v = parseFloat(getComputedStyle(e)[prop]);
    return Number.isFinite(v) ? v : null;
  };
  const color = (s, prop) => {
    const e = q(s);
    return e ? getComputedStyle(e)[prop] : null;
  };

  let columnCount = 0, columnGap = 0;
  const g = q('.wg-grid');
  if (g) {
    const cs = getComputedStyle(g);
    columnCount = cs.gridTemplateColumns.split(' ').filter(Boolean).length;
    columnGap = parseFloat(cs.columnGap) || 0;
  }

  return {
    page: box('.wg-page'),
    header: box('.wg-header'),
    legend: box('.wg-legend'),
    grid: box('.wg-grid'),
    timeColumn: box('.wg-time-col'),
    dayColumn: box('.wg-day-col'),
    timeSlot: box('.wg-slot'),
    columnCount: columnCount,
    columnGap: columnGap,
    fonts: {
      title: px('.wg-title', 'fontSize'),
      weekInfo: px('.wg-week-info', 'fontSize'),
      dayHeader: px('.wg-day-header', 'fontSize'),
      timeHour: px('.wg-time-hour', 'fontSize'),
      timeHalf: px('.wg-time-half', 'fontSize'),
      eventTitle: px('.wg-event-title', 'fontSize'),
      eventTime: px('.wg-event-time', 'fontSize'),
      legend: px('.wg-legend-label', 'fontSize'),
    },
    colors: {
      simplePractice: color('.wg-swatch.simplepractice', 'backgroundColor'),
      google: color('.wg-swatch.google', 'backgroundColor'),
      holiday: color('.wg-swatch.holiday', 'backgroundColor'),
      gridLine: color('.wg-slot', 'borderTopColor'),
      background: color('.wg-page', 'backgroundColor'),
      timeSlotBg: color('.wg-slot:not(.wg-hour)', 'backgroundColor'),
      hourBg: color('.wg-slot.wg-hour', 'backgroundColor'),
    },
    gridLineWidth: px('.wg-slot', 'borderTopWidth'),
    borderWidth: px('.wg-grid', 'borderTopWidth'),
  };
})()`
