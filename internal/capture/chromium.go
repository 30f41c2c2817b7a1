package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	appLog "weekgrid/internal/log"
	"weekgrid/internal/measure"
)

// Default capture parameters. These should match the viewport the
// /dashboard page is designed for.
const (
	DefaultWidth      = 1000
	DefaultHeight     = 1700
	DefaultTimeoutSec = 30
)

// ReadySelector is set on the dashboard root once rendering is complete.
const ReadySelector = `[data-ready="true"]`

// CaptureOptions defines parameters for a Chromium session against the
// dashboard page.
type CaptureOptions struct {
	// URL to load, e.g. "http://127.0.0.1:8080/dashboard".
	URL string

	// OutputPath is where a PNG screenshot will be written. Only used by
	// CaptureDashboardPNG.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire session. If zero, DefaultTimeoutSec is used.
	Timeout time.Duration
}

func (o *CaptureOptions) defaults() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// run loads opts.URL in a fresh headless tab, waits for the dashboard to
// signal readiness and then runs extra.
func run(parentCtx context.Context, opts CaptureOptions, extra ...chromedp.Action) error {
	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Small extra delay to allow final paints and web fonts.
		chromedp.Sleep(300 * time.Millisecond),
	}
	tasks = append(tasks, extra...)

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	return nil
}

// CaptureDashboardPNG captures a full-page PNG screenshot of the dashboard.
func CaptureDashboardPNG(ctx context.Context, opts CaptureOptions) error {
	if err := opts.defaults(); err != nil {
		return err
	}
	if opts.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}

	var png []byte
	if err := run(ctx, opts, chromedp.FullScreenshot(&png, 100)); err != nil {
		return err
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}

// DOMSource measures a live dashboard through headless Chromium. It
// implements measure.Source.
type DOMSource struct {
	Options CaptureOptions
}

// Snapshot returns the raw DOM geometry of the dashboard.
func (s DOMSource) Snapshot(ctx context.Context) (measure.DOMSnapshot, error) {
	opts := s.Options
	if err := opts.defaults(); err != nil {
		return measure.DOMSnapshot{}, err
	}

	var snap measure.DOMSnapshot
	if err := run(ctx, opts, chromedp.Evaluate(measureScript, &snap)); err != nil {
		return measure.DOMSnapshot{}, err
	}
	return snap, nil
}

// Measure implements measure.Source. An incomplete snapshot is still
// returned; missing fields carry fallback values.
func (s DOMSource) Measure(ctx context.Context) (measure.Measurements, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return measure.Measurements{}, err
	}
	if snap.Grid == nil {
		return measure.Measurements{}, errors.New("capture: dashboard grid element not found")
	}
	m, complete := measure.Normalize(snap)
	if !complete {
		appLog.Warn("capture: dashboard snapshot incomplete, missing fields use fallback values", "url", s.Options.URL)
	}
	return m, nil
}
