package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// PackwizExporter builds a modpack by running `packwiz mr export` in the
// scratch directory and locating the produced .mrpack file.
type PackwizExporter struct {
	runner   Runner
	lookPath func(string) (string, error)
}

// NewPackwizExporter creates an exporter using the given runner.
func NewPackwizExporter(r Runner) *PackwizExporter {
	return &PackwizExporter{runner: r, lookPath: exec.LookPath}
}

// SetLookPath overrides executable lookup (for testing).
func (e *PackwizExporter) SetLookPath(fn func(string) (string, error)) {
	e.lookPath = fn
}

// Export runs the packwiz export in dir and returns the produced artifact.
func (e *PackwizExporter) Export(ctx context.Context, dir string) (*Output, error) {
	if _, err := e.lookPath("packwiz"); err != nil {
		return nil, fmt.Errorf("%w: packwiz executable not on PATH", ErrToolNotFound)
	}

	out, exitCode, err := e.runner.Run(ctx, dir, "packwiz", "mr", "export")
	if err != nil {
		return nil, fmt.Errorf("run packwiz export: %w", err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("%w: packwiz exited with code %d: %s", ErrBuildFailed, exitCode, strings.TrimSpace(out))
	}

	path, err := findNewest(dir, "*.mrpack")
	if err != nil {
		return nil, err
	}
	return NewOutput(path), nil
}

// findNewest returns the most recently modified file in dir matching the
// glob pattern. Duplicates only arise from a dirty scratch copy; the export
// just written always wins.
func findNewest(dir string, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no %s file produced in %s", ErrBuildFailed, pattern, dir)
	}

	newest := matches[0]
	var newestMod int64 = -1
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); mod > newestMod {
			newest = m
			newestMod = mod
		}
	}
	return newest, nil
}
