package audit

import "weekgrid/internal/measure"

// SpecVersion identifies DefaultSpecs. Changing weights or thresholds changes
// scores for existing consumers, so bump it with any edit to the list.
const SpecVersion = "2025.1"

// PropertySpec is one audited property with its weight and the two
// divergence thresholds (absolute, in the property's unit).
type PropertySpec struct {
	Property          measure.Property `yaml:"property" json:"property"`
	Weight            float64          `yaml:"weight" json:"weight"`
	CriticalThreshold float64          `yaml:"critical_threshold" json:"criticalThreshold"`
	MajorThreshold    float64          `yaml:"major_threshold" json:"majorThreshold"`
}

// DefaultSpecs is the ordered audit contract. Column geometry dominates the
// score because it decides where every event lands.
func DefaultSpecs() []PropertySpec {
	return []PropertySpec{
		{Property: measure.PropTimeColumnWidth, Weight: 20, CriticalThreshold: 5, MajorThreshold: 10},
		{Property: measure.PropDayColumnWidth, Weight: 20, CriticalThreshold: 5, MajorThreshold: 10},
		{Property: measure.PropTimeSlotHeight, Weight: 15, CriticalThreshold: 5, MajorThreshold: 2},
		{Property: measure.PropHeaderHeight, Weight: 10, CriticalThreshold: 10, MajorThreshold: 5},
		{Property: measure.PropLegendHeight, Weight: 5, CriticalThreshold: 10, MajorThreshold: 5},
		{Property: measure.PropMargin, Weight: 5, CriticalThreshold: 10, MajorThreshold: 4},
		{Property: measure.PropFontEventTitle, Weight: 8, CriticalThreshold: 3, MajorThreshold: 1},
		{Property: measure.PropFontEventTime, Weight: 4, CriticalThreshold: 3, MajorThreshold: 1},
		{Property: measure.PropFontDayHeader, Weight: 4, CriticalThreshold: 4, MajorThreshold: 2},
		{Property: measure.PropFontTimeHour, Weight: 3, CriticalThreshold: 4, MajorThreshold: 2},
		{Property: measure.PropFontTitle, Weight: 2, CriticalThreshold: 6, MajorThreshold: 3},
		{Property: measure.PropGridLineWidth, Weight: 2, CriticalThreshold: 1, MajorThreshold: 0.5},
		{Property: measure.PropBorderWidth, Weight: 2, CriticalThreshold: 1, MajorThreshold: 0.5},
	}
}
