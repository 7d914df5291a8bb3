package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// GradleBuilder builds a mod by invoking the project's gradle wrapper in
// the scratch directory and locating the produced jar under build/libs.
type GradleBuilder struct {
	runner   Runner
	lookPath func(string) (string, error)
	goos     string
}

// NewGradleBuilder creates a builder using the given runner.
func NewGradleBuilder(r Runner) *GradleBuilder {
	return &GradleBuilder{runner: r, lookPath: exec.LookPath, goos: runtime.GOOS}
}

// SetLookPath overrides executable lookup (for testing).
func (b *GradleBuilder) SetLookPath(fn func(string) (string, error)) {
	b.lookPath = fn
}

// Build runs the gradle wrapper with the given arguments. Empty args
// default to the build task.
func (b *GradleBuilder) Build(ctx context.Context, dir string, args []string) (*Output, error) {
	if _, err := b.lookPath("java"); err != nil {
		return nil, fmt.Errorf("%w: java executable not on PATH", ErrToolNotFound)
	}

	script := filepath.Join(dir, b.wrapperName())
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: gradle wrapper not found at %s", ErrToolNotFound, script)
	}

	if len(args) == 0 {
		args = []string{"build"}
	}
	out, exitCode, err := b.runner.Run(ctx, dir, script, args...)
	if err != nil {
		return nil, fmt.Errorf("run gradle build: %w", err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("%w: gradle exited with code %d: %s", ErrBuildFailed, exitCode, lastLines(out, 10))
	}

	path, err := findModJar(filepath.Join(dir, "build", "libs"))
	if err != nil {
		return nil, err
	}
	return NewOutput(path), nil
}

func (b *GradleBuilder) wrapperName() string {
	if b.goos == "windows" {
		return "gradlew.bat"
	}
	return "gradlew"
}

// findModJar picks the distributable jar from build/libs: the largest jar
// that is not a sources, javadoc, or dev artifact.
func findModJar(libsDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(libsDir, "*.jar"))
	if err != nil {
		return "", fmt.Errorf("glob jars: %w", err)
	}

	var best string
	var bestSize int64 = -1
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".jar")
		if strings.HasSuffix(base, "-sources") || strings.HasSuffix(base, "-javadoc") || strings.HasSuffix(base, "-dev") {
			continue
		}
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = m
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: no distributable jar found in %s", ErrBuildFailed, libsDir)
	}
	return best, nil
}

// lastLines trims combined output to its final n lines for error messages.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
