package web

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"weekgrid/internal/audit"
	"weekgrid/internal/grid"
	appLog "weekgrid/internal/log"
	"weekgrid/internal/measure"
	"weekgrid/internal/model"
	"weekgrid/internal/preview"
	"weekgrid/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// weekParam resolves ?week=YYYY-MM-DD to the start of that week, defaulting
// to the current week.
func (s *Server) weekParam(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("week"))
	if raw == "" {
		return s.builder.WeekOf(s.now()), true
	}
	return s.parseWeek(c, raw)
}

func (s *Server) parseWeek(c *gin.Context, raw string) (time.Time, bool) {
	d, err := time.ParseInLocation("2006-01-02", raw, s.builder.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week; expected YYYY-MM-DD", "detail": err.Error()})
		return time.Time{}, false
	}
	return s.builder.WeekOf(d), true
}

type layoutResponse struct {
	Layout    grid.Layout  `json:"layout"`
	Derived   grid.Derived `json:"derived"`
	TimeSlots []string     `json:"timeSlots"`
}

func (s *Server) handleLayout(c *gin.Context) {
	l := s.cfg.Layout
	c.JSON(http.StatusOK, layoutResponse{
		Layout:    l,
		Derived:   l.Derived(),
		TimeSlots: grid.TimeSlots(l.Window),
	})
}

// handleGeneratedLayout returns an export layout reproducing the last
// dashboard measurements.
func (s *Server) handleGeneratedLayout(c *gin.Context) {
	s.auditMu.RLock()
	m := s.lastMeasurements
	s.auditMu.RUnlock()

	l, err := measure.GenerateLayout(m, s.cfg.Layout)
	if errors.Is(err, measure.ErrNoMeasurements) {
		c.JSON(http.StatusConflict, gin.H{"error": "no measurements extracted yet; run an audit first"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, layoutResponse{Layout: l, Derived: l.Derived(), TimeSlots: grid.TimeSlots(l.Window)})
}

func (s *Server) handleEvents(c *gin.Context) {
	start, ok := s.weekParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Week(c.Request.Context(), start))
}

type placeRequest struct {
	WeekStart string                    `json:"weekStart"`
	Events    map[string]model.RawEvent `json:"events"`
}

// handlePlace places caller-supplied events on the export layout without
// touching the ICS feeds.
func (s *Server) handlePlace(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	start := s.builder.WeekOf(s.now())
	if req.WeekStart != "" {
		var ok bool
		if start, ok = s.parseWeek(c, req.WeekStart); !ok {
			return
		}
	}
	placed := s.builder.Placer.PlaceMap(req.Events, start, s.builder.Location)
	c.JSON(http.StatusOK, gin.H{
		"weekStart": start,
		"placed":    placed,
		"skipped":   len(req.Events) - len(placed),
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	start, ok := s.weekParam(c)
	if !ok {
		return
	}
	w := s.Week(c.Request.Context(), start)
	var timed []model.Event
	for _, ev := range w.Events {
		if !ev.AllDay {
			timed = append(timed, ev)
		}
	}
	placed := s.dashPlacer.PlaceAll(timed, start)

	var buf bytes.Buffer
	if err := renderDashboard(&buf, s.cfg.Dashboard.Layout, start, placed, w.AllDay); err != nil {
		appLog.Error("dashboard render failed", err)
		c.String(http.StatusInternalServerError, "dashboard render failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handlePreview renders the export layout of the requested week as PNG.
func (s *Server) handlePreview(c *gin.Context) {
	start, ok := s.weekParam(c)
	if !ok {
		return
	}
	w := s.Week(c.Request.Context(), start)

	var buf bytes.Buffer
	if err := preview.WritePNG(&buf, s.cfg.Layout, w.Placed, preview.Options{WeekStart: start}); err != nil {
		appLog.Error("preview render failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preview render failed"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleLiveAudit(c *gin.Context) {
	c.JSON(http.StatusOK, s.RunAudit(c.Request.Context()))
}

type auditRequest struct {
	Measurements *measure.Measurements `json:"measurements"`
	PDFConfig    *measure.Measurements `json:"pdfConfig"`
	Specs        []audit.PropertySpec  `json:"specs"`
}

// handleOfflineAudit audits caller-supplied measurements. pdfConfig and
// specs default to the configured export layout and spec list.
func (s *Server) handleOfflineAudit(c *gin.Context) {
	var req auditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.Measurements == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "measurements are required"})
		return
	}
	cand := measure.FromLayout(s.cfg.Layout)
	if req.PDFConfig != nil {
		cand = *req.PDFConfig
	}
	specs := req.Specs
	if len(specs) == 0 {
		specs = s.cfg.AuditSpecs()
	}
	c.JSON(http.StatusOK, s.audit(*req.Measurements, cand, specs))
}

func (s *Server) handleAuditReport(c *gin.Context) {
	res, ok := s.LastAudit()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no audit has been run yet"})
		return
	}
	data, err := report.XLSX(res)
	if err != nil {
		appLog.Error("audit report failed", err, "id", res.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="audit-`+res.ID+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
