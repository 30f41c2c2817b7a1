package grid

import (
	"fmt"
	"sync"
)

// Window is the visible daily time range of the grid. Slots run from
// StartHour:00 through EndHour:30 inclusive, one per half hour.
type Window struct {
	StartHour int `yaml:"start_hour" json:"startHour"`
	EndHour   int `yaml:"end_hour" json:"endHour"`
}

// DefaultWindow is 06:00–23:30 (36 slots).
var DefaultWindow = Window{StartHour: 6, EndHour: 23}

// SlotCount returns the number of half-hour slots covered by w.
func (w Window) SlotCount() int {
	if w.EndHour < w.StartHour {
		return 0
	}
	return (w.EndHour - w.StartHour + 1) * 2
}

// SlotIndex maps a wall-clock time onto the slot axis. The result may be
// negative (before the window) or >= SlotCount (after it).
func (w Window) SlotIndex(hour, minute int) int {
	idx := (hour - w.StartHour) * 2
	if minute >= 30 {
		idx++
	}
	return idx
}

// Valid reports whether w describes a non-empty window inside one day.
func (w Window) Valid() bool {
	return w.StartHour >= 0 && w.EndHour <= 23 && w.StartHour <= w.EndHour
}

var defaultSlots = sync.OnceValue(func() []string {
	return buildSlots(DefaultWindow)
})

// TimeSlots returns the ordered half-hour labels ("06:00", "06:30", ...) for
// w. The returned slice is a fresh copy; callers may keep or modify it.
func TimeSlots(w Window) []string {
	if w == DefaultWindow {
		src := defaultSlots()
		out := make([]string, len(src))
		copy(out, src)
		return out
	}
	return buildSlots(w)
}

func buildSlots(w Window) []string {
	out := make([]string, 0, w.SlotCount())
	for h := w.StartHour; h <= w.EndHour; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return out
}
