package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"weekgrid/internal/grid"
	appLog "weekgrid/internal/log"
	"weekgrid/internal/preview"
)

// Artifact file names inside the output directory.
const (
	PreviewFile = "preview.png"
	PlacedFile  = "placed.json"
)

// WriteArtifacts writes the PNG preview and the placed-events JSON of w into
// dir. Files are replaced atomically.
func WriteArtifacts(dir string, w Week, l grid.Layout) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	js, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, PlacedFile), func(f *os.File) error {
		_, err := f.Write(js)
		return err
	}); err != nil {
		return fmt.Errorf("write %s: %w", PlacedFile, err)
	}

	if err := writeAtomic(filepath.Join(dir, PreviewFile), func(f *os.File) error {
		return preview.WritePNG(f, l, w.Placed, preview.Options{WeekStart: w.Start})
	}); err != nil {
		return fmt.Errorf("write %s: %w", PreviewFile, err)
	}

	appLog.Info("pipeline: artifacts written", "dir", dir, "placed", len(w.Placed))
	return nil
}

func writeAtomic(path string, fill func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".weekgrid-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
