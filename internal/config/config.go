package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"weekgrid/internal/audit"
	"weekgrid/internal/grid"
	"weekgrid/internal/measure"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
	// Source tags every event of this feed: "simplepractice", "google" or
	// "manual". Anything else renders with the default color.
	Source string `yaml:"source" json:"source"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// DashboardConfig points the DOM measurer at the rendered dashboard.
type DashboardConfig struct {
	// URL of the dashboard page. Empty means the built-in /dashboard page of
	// this server.
	URL            string `yaml:"url" json:"url"`
	Width          int    `yaml:"width" json:"width"`
	Height         int    `yaml:"height" json:"height"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	// Layout is how the built-in dashboard page renders the grid. It
	// defaults to the fallback measurement snapshot.
	Layout grid.Layout `yaml:"layout" json:"layout"`
}

// AuditConfig overrides the default property-spec list.
type AuditConfig struct {
	// Specs, if non-empty, replaces audit.DefaultSpecs entirely.
	Specs []audit.PropertySpec `yaml:"specs,omitempty" json:"specs,omitempty"`
	// OnRefresh runs a DOM audit after every scheduled refresh.
	OnRefresh bool `yaml:"on_refresh" json:"on_refresh"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as canonical display zone (e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is column 0 of the grid. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for periodic re-rendering.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// OutputDir receives preview.png, placed.json and audit reports.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Log LogConfig `yaml:"log" json:"log"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// Layout is the PDF export grid layout.
	Layout grid.Layout `yaml:"layout" json:"layout"`

	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`

	Audit AuditConfig `yaml:"audit" json:"audit"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DashboardLayout is the layout the built-in dashboard renders with: the
// fallback measurement snapshot on the default window.
func DashboardLayout() grid.Layout {
	base := grid.DefaultLayout()
	base.CellPadding = 2
	base.TextInset = 8
	fb := measure.Fallback()
	l, _ := measure.GenerateLayout(&fb, base)
	return l
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "America/New_York",
		WeekStart:   "monday",
		RefreshCron: "*/15 * * * *",
		OutputDir:   "/var/lib/weekgrid",
		CacheDir:    "/var/lib/weekgrid/ics-cache",
		Log:         LogConfig{Level: "info", Format: "console"},
		ICS:         []ICSConfig{},
		Layout:      grid.DefaultLayout(),
		Dashboard: DashboardConfig{
			Width:          1000,
			Height:         1700,
			TimeoutSeconds: 30,
			Layout:         DashboardLayout(),
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	// WeekStart default & validation.
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		// Unknown value; fall back to monday to avoid surprising layouts.
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = d.RefreshCron
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.OutputDir, "ics-cache")
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	c.Layout.Normalize()

	if c.Dashboard.Width <= 0 {
		c.Dashboard.Width = d.Dashboard.Width
	}
	if c.Dashboard.Height <= 0 {
		c.Dashboard.Height = d.Dashboard.Height
	}
	if c.Dashboard.TimeoutSeconds <= 0 {
		c.Dashboard.TimeoutSeconds = d.Dashboard.TimeoutSeconds
	}
	if c.Dashboard.Layout == (grid.Layout{}) {
		c.Dashboard.Layout = DashboardLayout()
	}
	c.Dashboard.Layout.Normalize()
}

// AuditSpecs returns the configured spec list or the default contract.
func (c *Config) AuditSpecs() []audit.PropertySpec {
	if len(c.Audit.Specs) > 0 {
		return c.Audit.Specs
	}
	return audit.DefaultSpecs()
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".weekgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
