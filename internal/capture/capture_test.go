package capture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	var o CaptureOptions
	require.Error(t, o.defaults())

	o.URL = "http://127.0.0.1:8080/dashboard"
	require.NoError(t, o.defaults())
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Positive(t, o.Timeout)
}

func TestMissingURLFailsBeforeLaunchingChromium(t *testing.T) {
	_, err := DOMSource{}.Measure(context.Background())
	assert.Error(t, err)

	err = CaptureDashboardPNG(context.Background(), CaptureOptions{URL: "http://x"})
	assert.Error(t, err)
}

func TestScriptQueriesDashboardClasses(t *testing.T) {
	for _, c := range []string{
		ClassPage, ClassHeader, ClassTitle, ClassWeekInfo, ClassLegend, ClassSwatch,
		ClassGrid, ClassTimeColumn, ClassDayColumn, ClassDayHeader, ClassSlot,
		ClassHourSlot, ClassTimeHour, ClassTimeHalf, ClassEventTitle, ClassEventTime,
		ClassLegendLabel,
	} {
		assert.Contains(t, measureScript, "."+c, c)
	}
}
