package grid

// DaysPerWeek is the number of day columns in the grid.
const DaysPerWeek = 7

// FontSizes is the named font-size table, in points.
type FontSizes struct {
	Title      float64 `yaml:"title" json:"title"`
	WeekInfo   float64 `yaml:"week_info" json:"weekInfo"`
	DayHeader  float64 `yaml:"day_header" json:"dayHeader"`
	TimeHour   float64 `yaml:"time_hour" json:"timeHour"`
	TimeHalf   float64 `yaml:"time_half" json:"timeHalf"`
	EventTitle float64 `yaml:"event_title" json:"eventTitle"`
	EventTime  float64 `yaml:"event_time" json:"eventTime"`
	Legend     float64 `yaml:"legend" json:"legend"`
}

// Colors is the named color table.
type Colors struct {
	SimplePractice Color `yaml:"simple_practice" json:"simplePractice"`
	Google         Color `yaml:"google" json:"google"`
	Holiday        Color `yaml:"holiday" json:"holiday"`
	GridLine       Color `yaml:"grid_line" json:"gridLine"`
	Background     Color `yaml:"background" json:"background"`
	TimeSlotBg     Color `yaml:"time_slot_bg" json:"timeSlotBg"`
	HourBg         Color `yaml:"hour_bg" json:"hourBg"`
}

// DefaultColors is shared by the export layout and the fallback measurements.
var DefaultColors = Colors{
	SimplePractice: RGB(100, 149, 237),
	Google:         RGB(34, 197, 94),
	Holiday:        RGB(255, 193, 7),
	GridLine:       RGB(200, 200, 200),
	Background:     RGB(255, 255, 255),
	TimeSlotBg:     RGB(248, 248, 248),
	HourBg:         RGB(240, 240, 240),
}

// Layout describes the weekly grid on a fixed-size page. Only primary fields
// are stored; every secondary dimension is a method so it can never drift
// from the fields it is computed from.
type Layout struct {
	PageWidth       float64 `yaml:"page_width" json:"pageWidth"`
	PageHeight      float64 `yaml:"page_height" json:"pageHeight"`
	Margin          float64 `yaml:"margin" json:"margin"`
	HeaderHeight    float64 `yaml:"header_height" json:"headerHeight"`
	LegendHeight    float64 `yaml:"legend_height" json:"legendHeight"`
	TimeColumnWidth float64 `yaml:"time_column_width" json:"timeColumnWidth"`
	DayColumnWidth  float64 `yaml:"day_column_width" json:"dayColumnWidth"`
	TimeSlotHeight  float64 `yaml:"time_slot_height" json:"timeSlotHeight"`

	// CellPadding insets event boxes inside their cell.
	CellPadding float64 `yaml:"cell_padding" json:"cellPadding"`
	// TextInset is subtracted from the column width to get the wrap limit.
	TextInset float64 `yaml:"text_inset" json:"textInset"`

	Window Window    `yaml:"window" json:"window"`
	Fonts  FontSizes `yaml:"fonts" json:"fonts"`
	Colors Colors    `yaml:"colors" json:"colors"`

	GridLineWidth float64 `yaml:"grid_line_width" json:"gridLineWidth"`
	BorderWidth   float64 `yaml:"border_width" json:"borderWidth"`
}

// DefaultLayout is the export configuration: US Letter landscape in points.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:       792,
		PageHeight:      612,
		Margin:          20,
		HeaderHeight:    40,
		LegendHeight:    20,
		TimeColumnWidth: 50,
		DayColumnWidth:  100,
		TimeSlotHeight:  14,
		CellPadding:     1,
		TextInset:       4,
		Window:          DefaultWindow,
		Fonts: FontSizes{
			Title:      16,
			WeekInfo:   12,
			DayHeader:  10,
			TimeHour:   8,
			TimeHalf:   7,
			EventTitle: 7,
			EventTime:  6,
			Legend:     8,
		},
		Colors:        DefaultColors,
		GridLineWidth: 0.5,
		BorderWidth:   1,
	}
}

func (l Layout) ContentWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

func (l Layout) GridStartX() float64 {
	return l.Margin
}

func (l Layout) GridStartY() float64 {
	return l.Margin + l.HeaderHeight + l.LegendHeight
}

func (l Layout) TotalGridWidth() float64 {
	return l.TimeColumnWidth + DaysPerWeek*l.DayColumnWidth
}

func (l Layout) SlotCount() int {
	return l.Window.SlotCount()
}

func (l Layout) GridHeight() float64 {
	return float64(l.SlotCount()) * l.TimeSlotHeight
}

// DayColumnX returns the left edge of day column d (0-based).
func (l Layout) DayColumnX(d int) float64 {
	return l.GridStartX() + l.TimeColumnWidth + float64(d)*l.DayColumnWidth
}

// SlotY returns the top edge of slot s.
func (l Layout) SlotY(s int) float64 {
	return l.GridStartY() + float64(s)*l.TimeSlotHeight
}

// Fits reports whether the grid, including header and legend, fits on the page.
func (l Layout) Fits() bool {
	return l.TotalGridWidth() <= l.ContentWidth() &&
		l.GridStartY()+l.GridHeight()+l.Margin <= l.PageHeight
}

// Derived is a snapshot of the computed geometry, for JSON output.
type Derived struct {
	ContentWidth   float64 `json:"contentWidth"`
	GridStartX     float64 `json:"gridStartX"`
	GridStartY     float64 `json:"gridStartY"`
	TotalGridWidth float64 `json:"totalGridWidth"`
	GridHeight     float64 `json:"gridHeight"`
	SlotCount      int     `json:"slotCount"`
	Fits           bool    `json:"fits"`
}

func (l Layout) Derived() Derived {
	return Derived{
		ContentWidth:   l.ContentWidth(),
		GridStartX:     l.GridStartX(),
		GridStartY:     l.GridStartY(),
		TotalGridWidth: l.TotalGridWidth(),
		GridHeight:     l.GridHeight(),
		SlotCount:      l.SlotCount(),
		Fits:           l.Fits(),
	}
}

// Normalize fills zero-valued fields from DefaultLayout so that partially
// specified YAML layouts still produce a usable grid.
func (l *Layout) Normalize() {
	d := DefaultLayout()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&l.PageWidth, d.PageWidth)
	fill(&l.PageHeight, d.PageHeight)
	fill(&l.Margin, d.Margin)
	fill(&l.HeaderHeight, d.HeaderHeight)
	fill(&l.LegendHeight, d.LegendHeight)
	fill(&l.TimeColumnWidth, d.TimeColumnWidth)
	fill(&l.DayColumnWidth, d.DayColumnWidth)
	fill(&l.TimeSlotHeight, d.TimeSlotHeight)
	if l.CellPadding < 0 {
		l.CellPadding = 0
	}
	if l.TextInset < 0 {
		l.TextInset = 0
	}
	if l.Window == (Window{}) || !l.Window.Valid() {
		l.Window = d.Window
	}

	fill(&l.Fonts.Title, d.Fonts.Title)
	fill(&l.Fonts.WeekInfo, d.Fonts.WeekInfo)
	fill(&l.Fonts.DayHeader, d.Fonts.DayHeader)
	fill(&l.Fonts.TimeHour, d.Fonts.TimeHour)
	fill(&l.Fonts.TimeHalf, d.Fonts.TimeHalf)
	fill(&l.Fonts.EventTitle, d.Fonts.EventTitle)
	fill(&l.Fonts.EventTime, d.Fonts.EventTime)
	fill(&l.Fonts.Legend, d.Fonts.Legend)

	// An all-zero color table means "not configured".
	if l.Colors == (Colors{}) {
		l.Colors = d.Colors
	}
	fill(&l.GridLineWidth, d.GridLineWidth)
	fill(&l.BorderWidth, d.BorderWidth)
}
