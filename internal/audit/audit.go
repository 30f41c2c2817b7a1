// Package audit compares a reference (dashboard) measurement set against a
// candidate (PDF config) set and scores how faithfully the export reproduces
// the dashboard.
package audit

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"weekgrid/internal/grid"
	appLog "weekgrid/internal/log"
	"weekgrid/internal/measure"
)

type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

// Inconsistency is one property whose values differ.
type Inconsistency struct {
	Property          measure.Property `json:"property"`
	DashboardValue    float64          `json:"dashboardValue"`
	PDFValue          float64          `json:"pdfValue"`
	Difference        float64          `json:"difference"`
	PercentDifference float64          `json:"percentDifference"`
	Severity          Severity         `json:"severity"`
	Impact            string           `json:"impact"`
	Fix               string           `json:"fix"`
}

// ColorMismatch is a color role whose dashboard and export colors differ.
// Colors are reported but do not contribute to the score.
type ColorMismatch struct {
	Role      measure.ColorRole `json:"role"`
	Dashboard grid.Color        `json:"dashboard"`
	PDF       grid.Color        `json:"pdf"`
	Distance  int               `json:"distance"`
}

// Result is the outcome of one audit run.
type Result struct {
	ID              string               `json:"id"`
	SpecVersion     string               `json:"specVersion"`
	Score           int                  `json:"score"`
	Measurements    measure.Measurements `json:"measurements"`
	PDFConfig       measure.Measurements `json:"pdfConfig"`
	Inconsistencies []Inconsistency      `json:"inconsistencies"`
	ColorMismatches []ColorMismatch      `json:"colorMismatches,omitempty"`
	Recommendations []string             `json:"recommendations"`
	Timestamp       time.Time            `json:"timestamp"`
}

// Count returns the number of inconsistencies with severity s.
func (r Result) Count(s Severity) int {
	n := 0
	for _, inc := range r.Inconsistencies {
		if inc.Severity == s {
			n++
		}
	}
	return n
}

// Reminder closes every recommendation list.
const Reminder = "Re-run the audit after applying fixes to confirm pixel-perfect alignment."

// Audit compares ref (dashboard) against cand (PDF config) using specs.
func Audit(ref, cand measure.Measurements, specs []PropertySpec) Result {
	return AuditAt(ref, cand, specs, time.Now())
}

// AuditAt is Audit with an explicit timestamp.
func AuditAt(ref, cand measure.Measurements, specs []PropertySpec, now time.Time) Result {
	res := Result{
		ID:              uuid.NewString(),
		SpecVersion:     SpecVersion,
		Measurements:    ref,
		PDFConfig:       cand,
		Inconsistencies: []Inconsistency{},
		Timestamp:       now,
	}

	var earned, total float64
	for _, spec := range specs {
		refV, ok1 := ref.Value(spec.Property)
		candV, ok2 := cand.Value(spec.Property)
		if !ok1 || !ok2 {
			appLog.Warn("audit: unknown property in spec, skipped", "property", string(spec.Property))
			continue
		}
		if spec.Weight <= 0 {
			continue
		}
		total += spec.Weight

		diff := math.Abs(refV - candV)
		sev := Classify(diff, spec)
		earned += Contribution(diff, sev, spec.Weight)
		if diff == 0 {
			continue
		}
		res.Inconsistencies = append(res.Inconsistencies, Inconsistency{
			Property:          spec.Property,
			DashboardValue:    refV,
			PDFValue:          candV,
			Difference:        diff,
			PercentDifference: percentOf(diff, refV),
			Severity:          sev,
			Impact:            impactFor(spec.Property, diff, sev),
			Fix:               fixFor(spec.Property, refV, candV),
		})
	}

	res.Score = 100
	if total > 0 {
		res.Score = int(math.Round(100 * earned / total))
	}
	res.ColorMismatches = compareColors(ref, cand)
	res.Recommendations = recommendations(res.Inconsistencies)
	return res
}

// Classify assigns the severity tier of an absolute difference.
func Classify(diff float64, spec PropertySpec) Severity {
	switch {
	case diff > spec.CriticalThreshold:
		return SeverityCritical
	case diff > spec.MajorThreshold:
		return SeverityMajor
	default:
		return SeverityMinor
	}
}

// Contribution is the share of weight a property keeps given its difference.
// No tier goes below zero.
func Contribution(diff float64, sev Severity, weight float64) float64 {
	if diff == 0 {
		return weight
	}
	switch sev {
	case SeverityCritical:
		return math.Max(0, weight-2*diff)
	case SeverityMajor:
		return math.Max(weight*0.5, weight-diff)
	default:
		return math.Max(0, weight-0.5*diff)
	}
}

// percentOf returns diff relative to ref in percent; a zero reference yields 0.
func percentOf(diff, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return diff / math.Abs(ref) * 100
}

func impactFor(p measure.Property, diff float64, sev Severity) string {
	d := formatNum(diff)
	switch {
	case p == measure.PropTimeColumnWidth || p == measure.PropDayColumnWidth:
		return fmt.Sprintf("Columns shift horizontally by %spx per column; events drift away from their day.", d)
	case p == measure.PropTimeSlotHeight:
		return fmt.Sprintf("Every slot is off by %spx; events drift vertically and durations look wrong.", d)
	case p == measure.PropHeaderHeight || p == measure.PropLegendHeight || p == measure.PropMargin:
		return fmt.Sprintf("Grid origin moves by %spx; the whole grid is offset.", d)
	case p.IsTypography():
		if sev == SeverityMinor {
			return fmt.Sprintf("Text size differs by %spt; barely noticeable.", d)
		}
		return fmt.Sprintf("Text size differs by %spt; titles wrap and clip differently.", d)
	case p == measure.PropGridLineWidth || p == measure.PropBorderWidth:
		return fmt.Sprintf("Line weight differs by %spx.", d)
	default:
		return fmt.Sprintf("Value differs by %s.", d)
	}
}

func fixFor(p measure.Property, ref, cand float64) string {
	return fmt.Sprintf("Set %s to %s (currently %s)", p, formatNum(ref), formatNum(cand))
}

func recommendations(incs []Inconsistency) []string {
	var critical, major []Inconsistency
	for _, inc := range incs {
		switch inc.Severity {
		case SeverityCritical:
			critical = append(critical, inc)
		case SeverityMajor:
			major = append(major, inc)
		}
	}

	out := make([]string, 0, len(critical)+len(major)+3)
	if len(critical) > 0 {
		out = append(out, fmt.Sprintf("Fix %d CRITICAL inconsistencies first:", len(critical)))
		for _, inc := range critical {
			out = append(out, "  • "+inc.Fix)
		}
	}
	if len(major) > 0 {
		out = append(out, fmt.Sprintf("Address %d MAJOR inconsistencies:", len(major)))
		for _, inc := range major {
			out = append(out, "  • "+inc.Fix)
		}
	}
	return append(out, Reminder)
}

func compareColors(ref, cand measure.Measurements) []ColorMismatch {
	var out []ColorMismatch
	for _, role := range measure.ColorRoles {
		a, _ := ref.Color(role)
		b, _ := cand.Color(role)
		if d := a.Distance(b); d > 0 {
			out = append(out, ColorMismatch{Role: role, Dashboard: a, PDF: b, Distance: d})
		}
	}
	return out
}

func formatNum(v float64) string {
	return fmt.Sprintf("%g", math.Round(v*100)/100)
}
