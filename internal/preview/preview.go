// Package preview rasterizes a placed week onto a PNG so the export
// geometry can be inspected without a PDF toolchain.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"weekgrid/internal/grid"
	"weekgrid/internal/placement"
	"weekgrid/internal/textmetric"
)

// DefaultScale renders two pixels per layout unit.
const DefaultScale = 2.0

// Options carries the page text and raster scale.
type Options struct {
	// Scale is pixels per layout unit; 0 means DefaultScale.
	Scale float64
	// WeekStart labels the title and the day headers.
	WeekStart time.Time
	Title     string
}

// Legend entries in draw order.
var legend = []struct {
	label string
	pick  func(grid.Colors) grid.Color
}{
	{"SimplePractice", func(c grid.Colors) grid.Color { return c.SimplePractice }},
	{"Google Calendar", func(c grid.Colors) grid.Color { return c.Google }},
	{"Holidays", func(c grid.Colors) grid.Color { return c.Holiday }},
}

type canvas struct {
	img    *image.RGBA
	scale  float64
	layout grid.Layout

	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

// Render draws the layout grid and the placed events.
func Render(l grid.Layout, events []placement.PlacedEvent, opts Options) (*image.RGBA, error) {
	if l.SlotCount() <= 0 {
		return nil, errors.New("preview: layout has no slots")
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	w := int(math.Ceil(l.PageWidth * opts.Scale))
	h := int(math.Ceil(l.PageHeight * opts.Scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("preview: invalid page size %gx%g", l.PageWidth, l.PageHeight)
	}

	c := &canvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		scale:  opts.Scale,
		layout: l,
		faces:  make(map[faceKey]font.Face),
	}
	defer c.close()

	c.fill(0, 0, l.PageWidth, l.PageHeight, l.Colors.Background)
	if err := c.drawHeader(opts); err != nil {
		return nil, err
	}
	if err := c.drawLegend(); err != nil {
		return nil, err
	}
	if err := c.drawGrid(); err != nil {
		return nil, err
	}
	for _, pe := range events {
		if err := c.drawEvent(pe); err != nil {
			return nil, err
		}
	}
	return c.img, nil
}

// WritePNG renders and encodes in one step.
func WritePNG(w io.Writer, l grid.Layout, events []placement.PlacedEvent, opts Options) error {
	img, err := Render(l, events, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (c *canvas) close() {
	for _, f := range c.faces {
		f.Close()
	}
}

func (c *canvas) px(v float64) int { return int(math.Round(v * c.scale)) }

func (c *canvas) fill(x, y, w, h float64, col grid.Color) {
	r := image.Rect(c.px(x), c.px(y), c.px(x+w), c.px(y+h))
	draw.Draw(c.img, r, image.NewUniform(col.NRGBA()), image.Point{}, draw.Src)
}

// stroke draws a rectangle outline of the given line width. Widths under
// one pixel are drawn one pixel wide.
func (c *canvas) stroke(x, y, w, h, lw float64, col grid.Color) {
	t := math.Max(lw, 1/c.scale)
	c.fill(x, y, w, t, col)
	c.fill(x, y+h-t, w, t, col)
	c.fill(x, y, t, h, col)
	c.fill(x+w-t, y, t, h, col)
}

func (c *canvas) face(bold bool, size float64) (font.Face, error) {
	k := faceKey{bold: bold, size: size * c.scale}
	if f, ok := c.faces[k]; ok {
		return f, nil
	}
	src := textmetric.Regular()
	if bold {
		src = textmetric.Bold()
	}
	f, err := src.NewSizedFace(k.size)
	if err != nil {
		return nil, fmt.Errorf("preview: font face: %w", err)
	}
	c.faces[k] = f
	return f, nil
}

// text draws s with its baseline at (x, y) in layout units.
func (c *canvas) text(s string, x, y float64, bold bool, size float64, col color.Color) error {
	if s == "" {
		return nil
	}
	f, err := c.face(bold, size)
	if err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: f,
		Dot:  fixed.P(c.px(x), c.px(y)),
	}
	d.DrawString(s)
	return nil
}

// textWidth is the advance of s in layout units.
func (c *canvas) textWidth(s string, bold bool, size float64) float64 {
	src := textmetric.Regular()
	if bold {
		src = textmetric.Bold()
	}
	return src.Width(s, size)
}

func (c *canvas) drawHeader(opts Options) error {
	l := c.layout
	title := opts.Title
	if title == "" {
		title = "Weekly Calendar"
	}
	top := l.Margin
	if err := c.text(title, l.Margin, top+l.Fonts.Title, true, l.Fonts.Title, color.Black); err != nil {
		return err
	}
	if opts.WeekStart.IsZero() {
		return nil
	}
	end := opts.WeekStart.AddDate(0, 0, grid.DaysPerWeek-1)
	info := fmt.Sprintf("%s – %s", opts.WeekStart.Format("Jan 2"), end.Format("Jan 2, 2006"))
	iw := c.textWidth(info, false, l.Fonts.WeekInfo)
	if err := c.text(info, l.PageWidth-l.Margin-iw, top+l.Fonts.Title, false, l.Fonts.WeekInfo, color.Gray{Y: 80}); err != nil {
		return err
	}

	// Day headers sit on the bottom edge of the header band.
	baseline := l.Margin + l.HeaderHeight - 4
	for d := 0; d < grid.DaysPerWeek; d++ {
		label := opts.WeekStart.AddDate(0, 0, d).Format("Mon 1/2")
		lw := c.textWidth(label, true, l.Fonts.DayHeader)
		x := l.DayColumnX(d) + (l.DayColumnWidth-lw)/2
		if err := c.text(label, x, baseline, true, l.Fonts.DayHeader, color.Black); err != nil {
			return err
		}
	}
	return nil
}

func (c *canvas) drawLegend() error {
	l := c.layout
	y := l.Margin + l.HeaderHeight
	sw := l.Fonts.Legend
	x := l.GridStartX()
	for _, e := range legend {
		c.fill(x, y+(l.LegendHeight-sw)/2, sw, sw, e.pick(l.Colors))
		x += sw + 4
		if err := c.text(e.label, x, y+(l.LegendHeight+sw)/2-1, false, l.Fonts.Legend, color.Black); err != nil {
			return err
		}
		x += c.textWidth(e.label, false, l.Fonts.Legend) + 16
	}
	return nil
}

func (c *canvas) drawGrid() error {
	l := c.layout
	x0, y0 := l.GridStartX(), l.GridStartY()
	slots := grid.TimeSlots(l.Window)

	for s, label := range slots {
		y := l.SlotY(s)
		hour := s%2 == 0
		bg := l.Colors.TimeSlotBg
		size := l.Fonts.TimeHalf
		if hour {
			bg = l.Colors.HourBg
			size = l.Fonts.TimeHour
		}
		c.fill(x0, y, l.TotalGridWidth(), l.TimeSlotHeight, bg)
		if err := c.text(label, x0+2, y+(l.TimeSlotHeight+size)/2-1, hour, size, color.Gray{Y: 60}); err != nil {
			return err
		}
	}

	// Horizontal then vertical lines.
	for s := 0; s <= len(slots); s++ {
		c.fill(x0, l.SlotY(s), l.TotalGridWidth(), l.GridLineWidth, l.Colors.GridLine)
	}
	c.fill(x0+l.TimeColumnWidth, y0, l.GridLineWidth, l.GridHeight(), l.Colors.GridLine)
	for d := 1; d < grid.DaysPerWeek; d++ {
		c.fill(l.DayColumnX(d), y0, l.GridLineWidth, l.GridHeight(), l.Colors.GridLine)
	}
	c.stroke(x0, y0, l.TotalGridWidth(), l.GridHeight(), l.BorderWidth, grid.RGB(0, 0, 0))
	return nil
}

func (c *canvas) drawEvent(pe placement.PlacedEvent) error {
	l := c.layout
	r := pe.Rect
	c.fill(r.X, r.Y, r.Width, r.Height, pe.Colors.Fill)
	c.stroke(r.X, r.Y, r.Width, r.Height, 1, pe.Colors.Stroke)

	txt := pe.Colors.Text.NRGBA()
	x := r.X + l.TextInset/2
	y := r.Y + 1
	for _, line := range pe.Lines {
		y += l.Fonts.EventTitle
		if y > r.Y+r.Height {
			return nil
		}
		if err := c.text(line, x, y, true, l.Fonts.EventTitle, txt); err != nil {
			return err
		}
		y += 1
	}
	if pe.TimeLabel != "" && y+l.Fonts.EventTime <= r.Y+r.Height {
		return c.text(pe.TimeLabel, x, y+l.Fonts.EventTime, false, l.Fonts.EventTime, txt)
	}
	return nil
}
