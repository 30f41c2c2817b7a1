package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotsDefaultWindow(t *testing.T) {
	slots := TimeSlots(DefaultWindow)
	require.Len(t, slots, 36)
	assert.Equal(t, "06:00", slots[0])
	assert.Equal(t, "06:30", slots[1])
	assert.Equal(t, "23:30", slots[35])
	assert.Equal(t, 36, DefaultWindow.SlotCount())
}

func TestTimeSlotsRestartable(t *testing.T) {
	a := TimeSlots(DefaultWindow)
	a[0] = "mutated"
	b := TimeSlots(DefaultWindow)
	assert.Equal(t, "06:00", b[0])

	w := Window{StartHour: 8, EndHour: 9}
	if diff := cmp.Diff([]string{"08:00", "08:30", "09:00", "09:30"}, TimeSlots(w)); diff != "" {
		t.Errorf("TimeSlots mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, TimeSlots(w), TimeSlots(w))
}

func TestSlotIndex(t *testing.T) {
	w := DefaultWindow
	assert.Equal(t, 0, w.SlotIndex(6, 0))
	assert.Equal(t, 1, w.SlotIndex(6, 30))
	assert.Equal(t, 1, w.SlotIndex(6, 59))
	assert.Equal(t, 6, w.SlotIndex(9, 0))
	assert.Equal(t, 8, w.SlotIndex(10, 0))
	assert.Equal(t, -2, w.SlotIndex(5, 0))
	assert.Equal(t, 35, w.SlotIndex(23, 45))
}

func TestLayoutDerivedInvariants(t *testing.T) {
	l := DefaultLayout()
	check := func(l Layout) {
		t.Helper()
		assert.Equal(t, float64(l.SlotCount())*l.TimeSlotHeight, l.GridHeight())
		assert.Equal(t, l.TimeColumnWidth+7*l.DayColumnWidth, l.TotalGridWidth())
		assert.Equal(t, l.PageWidth-2*l.Margin, l.ContentWidth())
		assert.Equal(t, l.Margin, l.GridStartX())
		assert.Equal(t, l.Margin+l.HeaderHeight+l.LegendHeight, l.GridStartY())
	}
	check(l)

	l.TimeSlotHeight = 21
	l.DayColumnWidth = 73
	l.TimeColumnWidth = 41
	l.Margin = 7
	l.HeaderHeight = 55
	l.Window = Window{StartHour: 8, EndHour: 18}
	check(l)
	assert.Equal(t, 22, l.SlotCount())
	assert.Equal(t, 22*21.0, l.GridHeight())
}

func TestDefaultLayoutFitsPage(t *testing.T) {
	l := DefaultLayout()
	assert.True(t, l.Fits())
	d := l.Derived()
	assert.Equal(t, 750.0, d.TotalGridWidth)
	assert.Equal(t, 504.0, d.GridHeight)
	assert.Equal(t, 80.0, d.GridStartY)
}

func TestLayoutNormalize(t *testing.T) {
	l := Layout{TimeColumnWidth: 60, Window: Window{StartHour: 20, EndHour: 3}}
	l.Normalize()
	assert.Equal(t, 60.0, l.TimeColumnWidth)
	assert.Equal(t, DefaultLayout().DayColumnWidth, l.DayColumnWidth)
	assert.Equal(t, DefaultWindow, l.Window)
	assert.Equal(t, DefaultColors, l.Colors)
	assert.Equal(t, DefaultLayout().Fonts, l.Fonts)
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#6495ed")
	require.NoError(t, err)
	assert.Equal(t, RGB(100, 149, 237), c)
	assert.Equal(t, "#6495ed", c.String())

	short, err := ParseColor("fff")
	require.NoError(t, err)
	assert.Equal(t, RGB(255, 255, 255), short)

	_, err = ParseColor("#12345")
	assert.Error(t, err)

	assert.Equal(t, RGB(80, 119, 190), c.Scale(0.8))
	assert.Equal(t, 0, c.Distance(c))
	assert.Equal(t, 10, RGB(10, 0, 5).Distance(RGB(0, 3, 0)))

	var back Color
	require.NoError(t, back.UnmarshalText([]byte("#6495ED")))
	assert.Equal(t, c, back)
}
