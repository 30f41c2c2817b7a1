package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekgrid/internal/audit"
	"weekgrid/internal/config"
	"weekgrid/internal/measure"
	"weekgrid/internal/model"
	"weekgrid/internal/pipeline"
	"weekgrid/internal/placement"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	b, err := pipeline.NewBuilder(cfg)
	require.NoError(t, err)

	s := NewServer(cfg, b, measure.FallbackSource{}, true)
	s.now = func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, b.Location) }
	return s
}

func do(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		js, _ := json.Marshal(body)
		rd = bytes.NewReader(js)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	})

	// /health stays open.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", nil).Code)

	w := do(s, http.MethodGet, "/api/layout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/layout", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/layout", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLayoutEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(s, http.MethodGet, "/api/layout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TimeSlots []string       `json:"timeSlots"`
		Layout    map[string]any `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.TimeSlots, 36)
	assert.Equal(t, "06:00", resp.TimeSlots[0])
	assert.Equal(t, "23:30", resp.TimeSlots[35])
	assert.NotEmpty(t, resp.Layout)
}

func TestPlaceEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(s, http.MethodPost, "/api/place", map[string]any{
		"weekStart": "2025-03-03",
		"events": map[string]model.RawEvent{
			"e1": {
				StartTime: "2025-03-04T10:00:00",
				EndTime:   "2025-03-04T11:00:00",
				Title:     "Client A Appointment",
				Source:    "simplepractice",
			},
			"bad": {StartTime: "not a time", EndTime: "2025-03-04T11:00:00", Title: "Broken"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Placed  []placement.PlacedEvent `json:"placed"`
		Skipped int                     `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Placed, 1)
	assert.Equal(t, 1, resp.Skipped)

	pe := resp.Placed[0]
	assert.Equal(t, "e1", pe.EventID)
	assert.Equal(t, model.SourceSimplePractice, pe.Source)
	assert.Equal(t, 1, pe.DayIndex)
	assert.Equal(t, 8, pe.StartSlot)
	assert.Equal(t, 10, pe.EndSlot)
	assert.Equal(t, []string{"Client A"}, pe.Lines)
}

func TestPlaceRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/place", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodPost, "/api/place", map[string]any{"weekStart": "03/03/2025"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOfflineAudit(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(s, http.MethodPost, "/api/audit", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Measuring exactly what the export layout renders scores 100.
	m := measure.FromLayout(s.cfg.Layout)
	w = do(s, http.MethodPost, "/api/audit", map[string]any{"measurements": m})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res audit.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Inconsistencies)

	// An explicit candidate with a narrow time column loses the column weight.
	cand := m
	cand.TimeColumnWidth = m.TimeColumnWidth - 30
	w = do(s, http.MethodPost, "/api/audit", map[string]any{"measurements": m, "pdfConfig": cand})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Inconsistencies, 1)
	assert.Equal(t, measure.PropTimeColumnWidth, res.Inconsistencies[0].Property)
	assert.Equal(t, audit.SeverityCritical, res.Inconsistencies[0].Severity)
	assert.Equal(t, 80, res.Score)
}

func TestAuditReportAndGeneratedLayout(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/audit/report.xlsx", nil).Code)
	assert.Equal(t, http.StatusConflict, do(s, http.MethodGet, "/api/layout/generated", nil).Code)

	w := do(s, http.MethodGet, "/api/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := s.LastAudit()
	require.True(t, ok)

	w = do(s, http.MethodGet, "/api/audit/report.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = do(s, http.MethodGet, "/api/layout/generated", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Layout struct {
			TimeColumnWidth float64 `json:"timeColumnWidth"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, measure.Fallback().TimeColumnWidth, resp.Layout.TimeColumnWidth)
}

func TestDashboardAndPreview(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(s, http.MethodGet, "/dashboard?week=2025-03-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, `data-ready="true"`)
	assert.Contains(t, body, "Mon 3/3")

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/dashboard?week=tomorrow", nil).Code)

	w = do(s, http.MethodGet, "/preview.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestEventsEndpointWithoutSources(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(s, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var wk pipeline.Week
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wk))
	assert.True(t, wk.Start.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, s.builder.Location)))
	assert.Empty(t, wk.Placed)
	assert.Empty(t, wk.Errors)
}
