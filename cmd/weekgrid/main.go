package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"

	"weekgrid/internal/capture"
	"weekgrid/internal/config"
	appLog "weekgrid/internal/log"
	"weekgrid/internal/pipeline"
	"weekgrid/internal/report"
	"weekgrid/internal/web"
)

const version = "0.3.0"

// DashboardFile is the Chromium screenshot written with -dump.
const DashboardFile = "dashboard.png"

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	audit      bool
	dump       bool
	debug      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if err := appLog.Init(conf.Log.Level, conf.Log.Format, "weekgrid"); err != nil {
		appLog.Error("failed to init logger", err)
	}
	defer appLog.Sync()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("weekgrid starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"output_dir", conf.OutputDir,
		"ics_count", len(conf.ICS),
		"audit_on_refresh", conf.Audit.OnRefresh,
		"once", flags.once,
		"dump", flags.dump,
	)

	b, err := pipeline.NewBuilder(conf)
	if err != nil {
		appLog.Error("failed to build pipeline", err)
		os.Exit(1)
	}

	dashURL := dashboardURL(conf)
	src := capture.DOMSource{Options: capture.CaptureOptions{
		URL:     dashURL,
		Width:   conf.Dashboard.Width,
		Height:  conf.Dashboard.Height,
		Timeout: time.Duration(conf.Dashboard.TimeoutSeconds) * time.Second,
	}}
	srv := web.NewServer(conf, b, src, flags.debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- web.StartServer(ctx, srv)
	}()
	if err := waitReady(ctx, conf.Listen); err != nil {
		appLog.Error("HTTP server did not become ready", err)
		os.Exit(1)
	}

	r := &runner{conf: conf, srv: srv, src: src, audit: flags.audit, dump: flags.dump}

	if flags.once {
		err := r.cycle(ctx)
		stop()
		<-serverErr
		if err != nil {
			appLog.Error("single run failed", err)
			os.Exit(1)
		}
		appLog.Info("weekgrid exiting")
		return
	}

	sched := cron.New(cron.WithLocation(b.Location))
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		if err := r.cycle(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()

	// Render once at startup so artifacts exist before the first tick.
	if err := r.cycle(ctx); err != nil {
		appLog.Error("initial refresh failed", err)
	}

	select {
	case err := <-serverErr:
		if err != nil {
			appLog.Error("HTTP server stopped", err)
		}
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
		<-serverErr
	}

	<-sched.Stop().Done()
	appLog.Info("weekgrid exiting")
}

type runner struct {
	conf  *config.Config
	srv   *web.Server
	src   capture.DOMSource
	audit bool
	dump  bool
}

// cycle refreshes the current week, writes its artifacts and, when enabled,
// audits the dashboard and captures a screenshot.
func (r *runner) cycle(ctx context.Context) error {
	w := r.srv.Refresh(ctx)
	for _, e := range w.Errors {
		appLog.Warn("source failed", "error", e)
	}
	if err := pipeline.WriteArtifacts(r.conf.OutputDir, w, r.conf.Layout); err != nil {
		return err
	}

	var errs []error
	if r.audit || r.conf.Audit.OnRefresh {
		res := r.srv.RunAudit(ctx)
		if err := report.Save(r.conf.OutputDir, res); err != nil {
			errs = append(errs, err)
		}
	}
	if r.dump {
		opts := r.src.Options
		opts.OutputPath = filepath.Join(r.conf.OutputDir, DashboardFile)
		if err := capture.CaptureDashboardPNG(ctx, opts); err != nil {
			errs = append(errs, err)
		} else {
			appLog.Info("dashboard screenshot written", "path", opts.OutputPath)
		}
	}
	return errors.Join(errs...)
}

// dashboardURL returns the configured dashboard URL, or this server's own
// /dashboard page with basic auth credentials embedded when enabled.
func dashboardURL(c *config.Config) string {
	if c.Dashboard.URL != "" {
		return c.Dashboard.URL
	}
	u := url.URL{Scheme: "http", Host: localAddr(c.Listen), Path: "/dashboard"}
	if ba := c.BasicAuth; ba != nil && ba.Username != "" && ba.Password != "" {
		u.User = url.UserPassword(ba.Username, ba.Password)
	}
	return u.String()
}

// localAddr turns a listen address into one a local client can dial.
func localAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

// waitReady polls /health until the server answers.
func waitReady(ctx context.Context, listen string) error {
	resp, err := resty.New().
		SetRetryCount(20).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		R().
		SetContext(ctx).
		Get("http://" + localAddr(listen) + "/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return errors.New("health check returned " + resp.Status())
	}
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/weekgrid/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh cycle and exit")
	flag.BoolVar(&cfg.audit, "audit", false, "Audit the dashboard against the export layout on every refresh")
	flag.BoolVar(&cfg.dump, "dump", false, "Also write a Chromium screenshot of the dashboard (dashboard.png)")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and gin debug mode")

	flag.Parse()

	return cfg
}
