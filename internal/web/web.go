package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"weekgrid/internal/audit"
	"weekgrid/internal/config"
	appLog "weekgrid/internal/log"
	"weekgrid/internal/measure"
	"weekgrid/internal/pipeline"
	"weekgrid/internal/placement"
)

const weekCacheTTL = 30 * time.Second

// Server provides the HTTP API, the HTML dashboard and the PNG preview.
type Server struct {
	cfg     *config.Config
	debug   bool
	engine  *gin.Engine
	builder *pipeline.Builder
	source  measure.Source

	// dashPlacer lays events out on the dashboard geometry, which differs
	// from the export layout.
	dashPlacer *placement.Placer

	// In-memory cache of the last built week to avoid redundant
	// fetch/parse/expand work on every HTTP request.
	weekMu    sync.RWMutex
	weekCache *weekCache

	// Last audit and the reference measurements it used.
	auditMu          sync.RWMutex
	lastAudit        *audit.Result
	lastMeasurements *measure.Measurements

	now func() time.Time
}

// weekCache holds a built week and its timestamp.
type weekCache struct {
	week      pipeline.Week
	updatedAt time.Time
}

// NewServer constructs a new Server. src measures the live dashboard for
// audits; nil means the fallback snapshot.
func NewServer(cfg *config.Config, b *pipeline.Builder, src measure.Source, debug bool) *Server {
	if src == nil {
		src = measure.FallbackSource{}
	}
	s := &Server{
		cfg:        cfg,
		debug:      debug,
		builder:    b,
		source:     src,
		dashPlacer: placement.New(cfg.Dashboard.Layout),
		now:        time.Now,
	}
	s.engine = s.newEngine()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) newEngine() *gin.Engine {
	if !s.debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		r.Use(s.basicAuth())
	}

	r.GET("/health", s.handleHealth)
	r.GET("/dashboard", s.handleDashboard)
	r.GET("/preview.png", s.handlePreview)

	api := r.Group("/api")
	{
		api.GET("/layout", s.handleLayout)
		api.GET("/layout/generated", s.handleGeneratedLayout)
		api.GET("/events", s.handleEvents)
		api.POST("/place", s.handlePlace)
		api.GET("/audit", s.handleLiveAudit)
		api.POST("/audit", s.handleOfflineAudit)
		api.GET("/audit/report.xlsx", s.handleAuditReport)
	}
	return r
}

// requestLogger logs one line per request through the app logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		appLog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Empty
// username or password disables it.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuth guards every route except /health.
func (s *Server) basicAuth() gin.HandlerFunc {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			c.Header("WWW-Authenticate", `Basic realm="weekgrid", charset="UTF-8"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Week returns the cached week starting at weekStart, rebuilding it when
// stale.
func (s *Server) Week(ctx context.Context, weekStart time.Time) pipeline.Week {
	now := s.now()

	s.weekMu.RLock()
	wc := s.weekCache
	s.weekMu.RUnlock()
	if wc != nil && wc.week.Start.Equal(weekStart) && now.Sub(wc.updatedAt) < weekCacheTTL {
		return wc.week
	}

	events, errs := s.builder.Events(ctx, weekStart)
	w := s.builder.Place(events, weekStart)
	for _, err := range errs {
		w.Errors = append(w.Errors, err.Error())
	}

	s.weekMu.Lock()
	s.weekCache = &weekCache{week: w, updatedAt: now}
	s.weekMu.Unlock()
	return w
}

// Refresh rebuilds the current week, bypassing the cache.
func (s *Server) Refresh(ctx context.Context) pipeline.Week {
	s.weekMu.Lock()
	s.weekCache = nil
	s.weekMu.Unlock()
	return s.Week(ctx, s.builder.WeekOf(s.now()))
}

// RunAudit measures the live dashboard and audits the export layout
// against it. The result is kept for the report and generated-layout
// endpoints.
func (s *Server) RunAudit(ctx context.Context) audit.Result {
	ref := measure.Extract(ctx, s.source)
	return s.audit(ref, measure.FromLayout(s.cfg.Layout), s.cfg.AuditSpecs())
}

func (s *Server) audit(ref, cand measure.Measurements, specs []audit.PropertySpec) audit.Result {
	res := audit.AuditAt(ref, cand, specs, s.now())

	s.auditMu.Lock()
	s.lastAudit = &res
	s.lastMeasurements = &ref
	s.auditMu.Unlock()

	appLog.Info("audit completed",
		"id", res.ID,
		"score", res.Score,
		"critical", res.Count(audit.SeverityCritical),
		"major", res.Count(audit.SeverityMajor),
		"minor", res.Count(audit.SeverityMinor),
	)
	return res
}

// LastAudit returns the most recent audit, if any.
func (s *Server) LastAudit() (audit.Result, bool) {
	s.auditMu.RLock()
	defer s.auditMu.RUnlock()
	if s.lastAudit == nil {
		return audit.Result{}, false
	}
	return *s.lastAudit, true
}

// StartServer serves s on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func StartServer(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
