package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekgrid/internal/grid"
	"weekgrid/internal/measure"
)

func single(weight, critical, major float64) []PropertySpec {
	return []PropertySpec{{Property: measure.PropTimeColumnWidth, Weight: weight, CriticalThreshold: critical, MajorThreshold: major}}
}

func withTimeColumn(v float64) measure.Measurements {
	m := measure.Fallback()
	m.TimeColumnWidth = v
	return m
}

func TestIdenticalMeasurementsScorePerfect(t *testing.T) {
	ref := measure.Fallback()
	res := Audit(ref, ref, DefaultSpecs())
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Inconsistencies)
	assert.Empty(t, res.ColorMismatches)
	assert.Equal(t, []string{Reminder}, res.Recommendations)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, SpecVersion, res.SpecVersion)
}

func TestCriticalContribution(t *testing.T) {
	spec := single(20, 5, 10)[0]
	sev := Classify(7, spec)
	assert.Equal(t, SeverityCritical, sev)
	assert.Equal(t, 6.0, Contribution(7, sev, 20))

	res := Audit(withTimeColumn(80), withTimeColumn(73), single(20, 5, 10))
	assert.Equal(t, 30, res.Score)
}

func TestTimeColumnScenario(t *testing.T) {
	res := Audit(withTimeColumn(80), withTimeColumn(50), single(20, 5, 10))
	require.Len(t, res.Inconsistencies, 1)
	inc := res.Inconsistencies[0]
	assert.Equal(t, SeverityCritical, inc.Severity)
	assert.Equal(t, 30.0, inc.Difference)
	assert.Equal(t, 80.0, inc.DashboardValue)
	assert.Equal(t, 50.0, inc.PDFValue)
	assert.Equal(t, 37.5, inc.PercentDifference)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 0.0, Contribution(30, SeverityCritical, 20))
	assert.Contains(t, inc.Fix, "timeColumnWidth")
}

func TestMajorAndMinorContribution(t *testing.T) {
	// diff 5: not above critical 10, above major 2.
	res := Audit(withTimeColumn(80), withTimeColumn(75), single(20, 10, 2))
	require.Len(t, res.Inconsistencies, 1)
	assert.Equal(t, SeverityMajor, res.Inconsistencies[0].Severity)
	assert.Equal(t, 75, res.Score)

	// The major floor is half the weight.
	assert.Equal(t, 10.0, Contribution(15, SeverityMajor, 20))

	res = Audit(withTimeColumn(80), withTimeColumn(78), single(20, 10, 5))
	require.Len(t, res.Inconsistencies, 1)
	assert.Equal(t, SeverityMinor, res.Inconsistencies[0].Severity)
	assert.Equal(t, 95, res.Score)
}

func TestScoreNormalizedByTotalWeight(t *testing.T) {
	specs := []PropertySpec{
		{Property: measure.PropTimeColumnWidth, Weight: 30, CriticalThreshold: 5, MajorThreshold: 10},
		{Property: measure.PropDayColumnWidth, Weight: 10, CriticalThreshold: 5, MajorThreshold: 10},
	}
	ref := measure.Fallback()
	cand := ref
	cand.DayColumnWidth += 50
	res := Audit(ref, cand, specs)
	// 30 of 40.
	assert.Equal(t, 75, res.Score)
}

func TestZeroReferenceHasZeroPercent(t *testing.T) {
	res := Audit(withTimeColumn(0), withTimeColumn(4), single(20, 5, 10))
	require.Len(t, res.Inconsistencies, 1)
	assert.Equal(t, 0.0, res.Inconsistencies[0].PercentDifference)
	assert.Equal(t, SeverityMinor, res.Inconsistencies[0].Severity)
}

func TestMinorContributionNeverNegative(t *testing.T) {
	// Weight 2 with a major threshold of 10: a MINOR diff of 8 would be -2.
	spec := PropertySpec{Property: measure.PropTimeColumnWidth, Weight: 2, CriticalThreshold: 20, MajorThreshold: 10}
	assert.Equal(t, SeverityMinor, Classify(8, spec))
	assert.Equal(t, 0.0, Contribution(8, SeverityMinor, 2))

	specs := []PropertySpec{
		spec,
		{Property: measure.PropDayColumnWidth, Weight: 8, CriticalThreshold: 5, MajorThreshold: 10},
	}
	res := Audit(withTimeColumn(80), withTimeColumn(72), specs)
	require.Len(t, res.Inconsistencies, 1)
	assert.Equal(t, SeverityMinor, res.Inconsistencies[0].Severity)
	// 8 of 10; an unclamped minor term would give 60.
	assert.Equal(t, 80, res.Score)
}

func TestPercentDifferenceKeepsPrecision(t *testing.T) {
	res := Audit(withTimeColumn(3), withTimeColumn(4), single(20, 5, 10))
	require.Len(t, res.Inconsistencies, 1)
	pct := res.Inconsistencies[0].PercentDifference
	assert.InDelta(t, 100.0/3, pct, 1e-9)
	assert.NotEqual(t, 33.33, pct)
}

func TestUnknownPropertyIsSkipped(t *testing.T) {
	specs := append(single(20, 5, 10), PropertySpec{Property: "fonts.comic", Weight: 50})
	res := Audit(withTimeColumn(80), withTimeColumn(80), specs)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Inconsistencies)
}

func TestEmptySpecsScorePerfect(t *testing.T) {
	res := Audit(measure.Fallback(), measure.FromLayout(grid.DefaultLayout()), nil)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Inconsistencies)
}

func TestRecommendationsOrder(t *testing.T) {
	ref := measure.Fallback()
	cand := measure.FromLayout(grid.DefaultLayout())
	res := AuditAt(ref, cand, DefaultSpecs(), time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))

	crit := res.Count(SeverityCritical)
	major := res.Count(SeverityMajor)
	require.Greater(t, crit, 0)

	recs := res.Recommendations
	assert.True(t, strings.HasPrefix(recs[0], "Fix "), recs[0])
	assert.Contains(t, recs[0], "CRITICAL")
	assert.Equal(t, Reminder, recs[len(recs)-1])

	header := 1
	if major > 0 {
		header = 2
	}
	assert.Len(t, recs, crit+major+header+1)

	// Bullets follow audit order.
	var bullets []string
	for _, inc := range res.Inconsistencies {
		if inc.Severity == SeverityCritical {
			bullets = append(bullets, "  • "+inc.Fix)
		}
	}
	assert.Equal(t, bullets, recs[1:1+crit])
	assert.Equal(t, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), res.Timestamp)
}

func TestInconsistencyOrderFollowsSpecs(t *testing.T) {
	ref := measure.Fallback()
	cand := measure.FromLayout(grid.DefaultLayout())
	res := Audit(ref, cand, DefaultSpecs())

	order := map[measure.Property]int{}
	for i, s := range DefaultSpecs() {
		order[s.Property] = i
	}
	for i := 1; i < len(res.Inconsistencies); i++ {
		assert.Less(t, order[res.Inconsistencies[i-1].Property], order[res.Inconsistencies[i].Property])
	}
	for _, inc := range res.Inconsistencies {
		assert.Greater(t, inc.Difference, 0.0)
	}
}

func TestColorMismatchesDoNotAffectScore(t *testing.T) {
	ref := measure.Fallback()
	cand := ref
	cand.Colors.GridLine = grid.RGB(0, 0, 0)
	res := Audit(ref, cand, DefaultSpecs())
	assert.Equal(t, 100, res.Score)
	require.Len(t, res.ColorMismatches, 1)
	assert.Equal(t, measure.ColorGridLine, res.ColorMismatches[0].Role)
	assert.Equal(t, 200, res.ColorMismatches[0].Distance)
}
