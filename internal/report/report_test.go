package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"weekgrid/internal/audit"
	"weekgrid/internal/grid"
	"weekgrid/internal/measure"
)

func sampleResult() audit.Result {
	ref := measure.Fallback()
	cand := measure.FromLayout(grid.DefaultLayout())
	return audit.AuditAt(ref, cand, audit.DefaultSpecs(), time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))
}

func TestXLSXContents(t *testing.T) {
	res := sampleResult()
	require.NotEmpty(t, res.Inconsistencies)

	data, err := XLSX(res)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetInconsistencies, SheetColors}, f.GetSheetList())

	score, err := f.GetCellValue(SheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(res.Score), score)

	rows, err := f.GetRows(SheetInconsistencies)
	require.NoError(t, err)
	require.Len(t, rows, len(res.Inconsistencies)+1)
	assert.Equal(t, InconsistencyHeader, rows[0])
	assert.Equal(t, string(res.Inconsistencies[0].Property), rows[1][0])
	assert.Equal(t, string(res.Inconsistencies[0].Severity), rows[1][5])
}

func TestXLSXRoundsPercent(t *testing.T) {
	ref := measure.Fallback()
	ref.TimeColumnWidth = 3
	cand := ref
	cand.TimeColumnWidth = 4
	specs := []audit.PropertySpec{{Property: measure.PropTimeColumnWidth, Weight: 20, CriticalThreshold: 5, MajorThreshold: 10}}
	res := audit.AuditAt(ref, cand, specs, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))
	require.Len(t, res.Inconsistencies, 1)

	data, err := XLSX(res)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	pct, err := f.GetCellValue(SheetInconsistencies, "E2")
	require.NoError(t, err)
	assert.Equal(t, "33.33", pct)

	// The JSON record keeps full precision.
	js, err := JSON(res)
	require.NoError(t, err)
	var back audit.Result
	require.NoError(t, json.Unmarshal(js, &back))
	assert.InDelta(t, 100.0/3, back.Inconsistencies[0].PercentDifference, 1e-9)
}

func TestJSONShape(t *testing.T) {
	data, err := JSON(sampleResult())
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"id", "score", "measurements", "pdfConfig", "inconsistencies", "recommendations", "timestamp"} {
		assert.Contains(t, m, k)
	}
}

func TestSaveWritesBothFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Save(dir, sampleResult()))
	for _, name := range []string{"audit.json", "audit.xlsx"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, fi.Size())
	}
}
