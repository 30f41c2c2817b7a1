// Package textmetric measures rendered text widths with the Go fonts so that
// word wrapping can be decided without a drawing backend.
package textmetric

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Measurer reports the advance width of text at a font size, in the same
// units as the size (points in, points out).
type Measurer interface {
	Width(text string, size float64) float64
}

// Face measures text with an OpenType font. Faces are created lazily per
// size and cached; a Face is safe for concurrent use.
type Face struct {
	font *sfnt.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFace parses an OpenType/TrueType font.
func NewFace(ttf []byte) (*Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("textmetric: parse font: %w", err)
	}
	return &Face{font: f, faces: make(map[float64]font.Face)}, nil
}

var (
	regularOnce sync.Once
	regular     *Face
	boldOnce    sync.Once
	bold        *Face
)

// Regular returns the shared Go Regular measurer.
func Regular() *Face {
	regularOnce.Do(func() {
		f, err := NewFace(goregular.TTF)
		if err != nil {
			// The embedded font is known-good.
			panic(err)
		}
		regular = f
	})
	return regular
}

// Bold returns the shared Go Bold measurer.
func Bold() *Face {
	boldOnce.Do(func() {
		f, err := NewFace(gobold.TTF)
		if err != nil {
			panic(err)
		}
		bold = f
	})
	return bold
}

// At returns the cached font.Face for size. DPI is fixed at 72 so one unit of
// size equals one output unit.
func (f *Face) At(size float64) (font.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.faceLocked(size)
}

func (f *Face) faceLocked(size float64) (font.Face, error) {
	if ff, ok := f.faces[size]; ok {
		return ff, nil
	}
	ff, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	f.faces[size] = ff
	return ff, nil
}

// NewSizedFace returns an uncached font.Face for size. font.Face values are
// not safe for concurrent use, so drawing code takes its own.
func (f *Face) NewSizedFace(size float64) (font.Face, error) {
	return opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Width implements Measurer.
func (f *Face) Width(text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ff, err := f.faceLocked(size)
	if err != nil {
		return Approx{}.Width(text, size)
	}
	adv := font.MeasureString(ff, text)
	return float64(adv) / 64
}

// Approx estimates widths as a fixed fraction of the size per rune. It is
// used when no font is available.
type Approx struct {
	// Ratio is the average glyph width as a fraction of the size; 0 means 0.5.
	Ratio float64
}

func (a Approx) Width(text string, size float64) float64 {
	r := a.Ratio
	if r <= 0 {
		r = 0.5
	}
	return float64(len([]rune(text))) * size * r
}
